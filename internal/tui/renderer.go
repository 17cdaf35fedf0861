package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/janekbaraniewski/cursorbar/internal/refresh"
)

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramRenderer forwards orchestrator output into a running program.
type ProgramRenderer struct {
	p Sender
}

func NewProgramRenderer(p Sender) *ProgramRenderer {
	return &ProgramRenderer{p: p}
}

func (r *ProgramRenderer) ShowLoading() { r.p.Send(LoadingMsg{}) }

func (r *ProgramRenderer) ShowError(message string) { r.p.Send(ErrorMsg{Message: message}) }

func (r *ProgramRenderer) Update(view refresh.View) { r.p.Send(ViewMsg(view)) }
