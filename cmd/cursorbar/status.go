package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/janekbaraniewski/cursorbar/internal/refresh"
	"github.com/janekbaraniewski/cursorbar/internal/render"
	"github.com/janekbaraniewski/cursorbar/internal/tui"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func newStatusCommand(configPath *string) *cobra.Command {
	var (
		format string
		plain  bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Run one refresh and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if err := validateFormat(format); err != nil {
				return err
			}
			if !cmd.Flags().Changed("plain") {
				plain = !term.IsTerminal(int(os.Stdout.Fd()))
			}

			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			view, err := refreshOnce(cmd.Context(), a)
			if err != nil {
				return err
			}
			return writeStatus(cmd.OutOrStdout(), view, format, plain)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or yaml")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable styling (default when stdout is not a terminal)")
	return cmd
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
}

// captureRenderer keeps the outcome of a single cycle.
type captureRenderer struct {
	view   refresh.View
	ok     bool
	errMsg string
}

func (c *captureRenderer) ShowLoading() {}

func (c *captureRenderer) ShowError(message string) { c.errMsg = message }

func (c *captureRenderer) Update(view refresh.View) {
	c.view, c.ok = view, true
}

func refreshOnce(ctx context.Context, a *app) (refresh.View, error) {
	capture := &captureRenderer{}
	orch, err := a.newOrchestrator(capture)
	if err != nil {
		return refresh.View{}, err
	}
	orch.Refresh(ctx)
	if !capture.ok {
		if capture.errMsg == "" {
			capture.errMsg = "no result"
		}
		return refresh.View{}, errors.New(capture.errMsg)
	}
	return capture.view, nil
}

func writeStatus(w io.Writer, view refresh.View, format string, plain bool) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	}

	if plain {
		_, err := fmt.Fprintf(w, "%s\n\n%s\n", render.StatusText(view), render.PlainTooltip(view))
		return err
	}
	_, err := fmt.Fprintf(w, "%s\n\n%s\n", render.StatusText(view), tui.Detail(view))
	return err
}
