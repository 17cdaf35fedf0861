package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/cursorbar/internal/appupdate"
	"github.com/janekbaraniewski/cursorbar/internal/version"
)

func newVersionCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			info := version.Get()
			fmt.Fprintf(out, "cursorbar %s (%s)\n", version.String(), info.Platform)
			if !check {
				return nil
			}

			res, err := appupdate.Check(cmd.Context(), appupdate.Options{
				CurrentVersion: info.Version,
				Timeout:        3 * time.Second,
			})
			if err != nil {
				return fmt.Errorf("update check: %w", err)
			}
			switch {
			case res.Current == "":
				fmt.Fprintln(out, "development build; update check skipped")
			case res.UpdateAvailable:
				fmt.Fprintf(out, "update available: %s -> %s\n  %s\n", res.Current, res.Latest, res.Hint)
			default:
				fmt.Fprintln(out, "up to date")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
