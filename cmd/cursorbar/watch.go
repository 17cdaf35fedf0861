package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/cursorbar/internal/refresh"
	"github.com/janekbaraniewski/cursorbar/internal/tui"
)

func newWatchCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show the status bar in the terminal (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), *configPath)
		},
	}
}

func runWatch(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var orch *refresh.Orchestrator

	model := tui.NewModel()
	model.SetOnRefresh(func() {
		go orch.Refresh(ctx)
	})
	model.SetOnFocus(func(focused bool) {
		if focused {
			go orch.FocusGained(ctx)
			return
		}
		orch.FocusLost()
	})

	program := tea.NewProgram(model, tea.WithReportFocus(), tea.WithContext(ctx))

	orch, err = a.newOrchestrator(tui.NewProgramRenderer(program))
	if err != nil {
		return err
	}
	defer orch.Stop()

	a.watchConfig(ctx, orch)
	// Send blocks until the program loop runs.
	go orch.Start(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
			program.Quit()
		case <-ctx.Done():
		}
	}()

	a.logger.Info().Str("config", a.cfgPath).Msg("watch started")
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("status bar: %w", err)
	}
	return nil
}
