package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads the settings file whenever it changes on disk.
type Watcher struct {
	path     string
	fs       *fsnotify.Watcher
	logger   zerolog.Logger
	debounce time.Duration
	last     Config
}

// NewWatcher watches the directory containing path so atomic replaces
// (write temp + rename) are seen as well as in-place writes.
func NewWatcher(path string, current Config, logger zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating settings watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return &Watcher{
		path:     filepath.Clean(path),
		fs:       fw,
		logger:   logger.With().Str("component", "config").Logger(),
		debounce: defaultDebounce,
		last:     current,
	}, nil
}

// Run delivers reloaded configs to onChange until ctx is cancelled. Reloads that
// leave every setting unchanged are not delivered.
func (w *Watcher) Run(ctx context.Context, onChange func(Config)) {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("settings watcher error")
		case <-fire:
			fire = nil
			w.reload(onChange)
		}
	}
}

func (w *Watcher) reload(onChange func(Config)) {
	cfg, err := LoadFrom(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Msg("ignoring unreadable settings")
		return
	}
	change := Compare(w.last, cfg)
	if change == 0 {
		return
	}
	w.logger.Info().Stringer("changed", change).Msg("settings reloaded")
	w.last = cfg
	onChange(cfg)
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}
