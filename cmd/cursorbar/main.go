package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/cursorbar/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "cursorbar",
		Short:         "cursorbar shows your Cursor usage, spend and team leaderboard rank in a status bar.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", fmt.Sprintf("settings file (default %s)", config.ConfigPath()))

	root.AddCommand(newWatchCommand(&configPath))
	root.AddCommand(newTrayCommand(&configPath))
	root.AddCommand(newStatusCommand(&configPath))
	root.AddCommand(newTokenCommand(&configPath))
	root.AddCommand(newConfigCommand(&configPath))
	root.AddCommand(newVersionCommand())

	return root
}
