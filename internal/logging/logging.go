// Package logging builds the process logger. Entries go to a log file in the
// state directory, or to stderr when CURSORBAR_DEBUG is set.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const DebugEnv = "CURSORBAR_DEBUG"

// Gate drops writes while disabled so the enable_logging setting can be
// toggled without rebuilding loggers.
type Gate struct {
	enabled atomic.Bool
	w       io.Writer
}

func NewGate(w io.Writer, enabled bool) *Gate {
	g := &Gate{w: w}
	g.enabled.Store(enabled)
	return g
}

func (g *Gate) SetEnabled(enabled bool) { g.enabled.Store(enabled) }

func (g *Gate) Enabled() bool { return g.enabled.Load() }

func (g *Gate) Write(p []byte) (int, error) {
	if !g.enabled.Load() {
		return len(p), nil
	}
	return g.w.Write(p)
}

// New returns a logger writing through a Gate to w.
func New(w io.Writer, enabled bool) (zerolog.Logger, *Gate) {
	gate := NewGate(w, enabled)
	level := zerolog.InfoLevel
	if os.Getenv(DebugEnv) != "" {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(gate).Level(level).With().Timestamp().Logger()
	return logger, gate
}

// Open picks the output for the process: stderr with a console writer when
// CURSORBAR_DEBUG is set, otherwise an append-only file in dir.
func Open(dir string) (io.Writer, func() error, error) {
	if os.Getenv(DebugEnv) != "" {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, func() error { return nil }, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "cursorbar.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, f.Close, nil
}
