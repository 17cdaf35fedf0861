package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/cursorbar/internal/refresh"
	"github.com/janekbaraniewski/cursorbar/internal/tray"
)

func newTrayCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tray",
		Short: "Show the status in the system tray (needs a build with -tags tray)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var orch *refresh.Orchestrator
			defer func() {
				if orch != nil {
					orch.Stop()
				}
			}()

			return tray.Run(func(r refresh.Renderer) (tray.Hooks, error) {
				o, err := a.newOrchestrator(r)
				if err != nil {
					return tray.Hooks{}, err
				}
				orch = o
				a.watchConfig(ctx, o)
				go o.Start(ctx)
				return tray.Hooks{
					Refresh: func() { go o.Refresh(ctx) },
					Quit:    cancel,
				}, nil
			})
		},
	}
}
