// Package tray shows the status line as a system tray title with the detail
// view as its tooltip. The real implementation needs the "tray" build tag.
package tray

import (
	"errors"

	"github.com/janekbaraniewski/cursorbar/internal/refresh"
)

var ErrUnavailable = errors.New("tray mode not available in this build; rebuild with: go build -tags tray ./cmd/cursorbar")

// Hooks are the actions behind the tray menu.
type Hooks struct {
	Refresh func()
	Quit    func()
}

// Setup receives the tray renderer once the tray is ready and wires it to an
// orchestrator.
type Setup func(r refresh.Renderer) (Hooks, error)
