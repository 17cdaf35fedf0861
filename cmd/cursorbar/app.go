package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/janekbaraniewski/cursorbar/internal/config"
	"github.com/janekbaraniewski/cursorbar/internal/cursorapi"
	"github.com/janekbaraniewski/cursorbar/internal/detect"
	"github.com/janekbaraniewski/cursorbar/internal/logging"
	"github.com/janekbaraniewski/cursorbar/internal/refresh"
	"github.com/janekbaraniewski/cursorbar/internal/token"
)

// app is the wiring shared by every command: settings, logger and the
// credential pipeline.
type app struct {
	cfgPath string
	cfg     config.Config
	logger  zerolog.Logger
	gate    *logging.Gate
	closeFn func() error

	locator   detect.Locator
	extractor *token.Extractor
}

func newApp(cfgPath string) (*app, error) {
	if strings.TrimSpace(cfgPath) == "" {
		cfgPath = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("%w (config path: %s)", err, cfgPath)
	}

	out, closeFn, err := logging.Open(config.StateDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "cursorbar: logging disabled: %v\n", err)
		out, closeFn = io.Discard, func() error { return nil }
	}
	logger, gate := logging.New(out, cfg.EnableLogging)

	runner := detect.ExecRunner{}
	return &app{
		cfgPath:   cfgPath,
		cfg:       cfg,
		logger:    logger,
		gate:      gate,
		closeFn:   closeFn,
		locator:   detect.NewLocator(runner),
		extractor: token.NewExtractor(runner, logger),
	}, nil
}

func (a *app) Close() error { return a.closeFn() }

func (a *app) source() token.Source {
	return token.Source{Paths: a.locator, Extractor: a.extractor}
}

func (a *app) newClient(baseURL string) refresh.API {
	return cursorapi.New(baseURL, cursorapi.WithLogger(a.logger))
}

func (a *app) newOrchestrator(r refresh.Renderer) (*refresh.Orchestrator, error) {
	return refresh.New(refresh.Options{
		Source:   a.source(),
		API:      a.newClient(a.cfg.APIBaseURL),
		NewAPI:   a.newClient,
		Renderer: r,
		Logger:   a.logger,
		Config:   a.cfg,
	})
}

// watchConfig applies settings changes until ctx is done. A watcher that
// cannot start only costs live reload.
func (a *app) watchConfig(ctx context.Context, orch *refresh.Orchestrator) {
	w, err := config.NewWatcher(a.cfgPath, a.cfg, a.logger)
	if err != nil {
		a.logger.Warn().Err(err).Str("path", a.cfgPath).Msg("settings will not be reloaded")
		return
	}
	go func() {
		defer w.Close()
		w.Run(ctx, func(cfg config.Config) {
			a.gate.SetEnabled(cfg.EnableLogging)
			orch.ApplyConfig(ctx, cfg)
		})
	}()
}
