package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/cursorbar/internal/token"
)

func newTokenCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Diagnose where the session token is read from (never prints the token)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			path, err := a.locator.StateDBPath(ctx, a.cfg.DatabasePath)
			if err != nil {
				fmt.Fprintf(w, "DATABASE\t-\t%v\n", err)
				return err
			}
			fmt.Fprintf(w, "DATABASE\t%s\n", path)
			if a.locator.IsWSL() {
				fmt.Fprintln(w, "WSL\tyes")
			}

			size, strategy, err := a.extractor.Inspect(path)
			if err != nil {
				fmt.Fprintf(w, "SIZE\t-\t%v\n", err)
				return err
			}
			fmt.Fprintf(w, "SIZE\t%s\n", humanBytes(size))
			fmt.Fprintf(w, "STRATEGY\t%s\n", strategy)

			raw, err := a.extractor.Extract(ctx, path)
			if err != nil {
				fmt.Fprintf(w, "TOKEN\tmissing\t%v\n", err)
				return err
			}
			cred, err := token.Derive(raw)
			if err != nil {
				fmt.Fprintf(w, "TOKEN\tunusable\t%v\n", err)
				return err
			}
			fmt.Fprintln(w, "TOKEN\tpresent")
			fmt.Fprintf(w, "USER\t%s\n", cred.UserID)
			if !cred.ExpiresAt.IsZero() {
				fmt.Fprintf(w, "EXPIRES\t%s\n", cred.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
