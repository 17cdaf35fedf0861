package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/cursorbar/internal/refresh"
	"github.com/janekbaraniewski/cursorbar/internal/render"
)

// LoadingMsg, ErrorMsg and ViewMsg carry renderer calls into the program.
type LoadingMsg struct{}

type ErrorMsg struct {
	Message string
}

type ViewMsg refresh.View

type barState int

const (
	stateLoading barState = iota
	stateError
	stateReady
)

type Model struct {
	state      barState
	errMsg     string
	view       refresh.View
	hasData    bool
	refreshing bool // true while a manual refresh is in progress
	showDetail bool
	width      int
	height     int

	spinner spinner.Model

	onRefresh func()
	onFocus   func(focused bool)
}

func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = spinnerStyle
	return Model{
		state:      stateLoading,
		showDetail: true,
		spinner:    s,
	}
}

// SetOnRefresh sets a callback invoked when the user requests a manual refresh.
// It runs on the program goroutine and must not block.
func (m *Model) SetOnRefresh(fn func()) {
	m.onRefresh = fn
}

// SetOnFocus sets a callback invoked when the terminal gains or loses focus.
func (m *Model) SetOnFocus(fn func(focused bool)) {
	m.onFocus = fn
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case LoadingMsg:
		m.state = stateLoading
		return m, nil

	case ErrorMsg:
		m.state = stateError
		m.errMsg = msg.Message
		m.refreshing = false
		return m, nil

	case ViewMsg:
		m.state = stateReady
		m.view = refresh.View(msg)
		m.hasData = true
		m.refreshing = false
		return m, nil

	case tea.FocusMsg:
		if m.onFocus != nil {
			m.onFocus(true)
		}
		return m, nil

	case tea.BlurMsg:
		if m.onFocus != nil {
			m.onFocus(false)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "r":
		return m.requestRefresh(), nil
	case "d", "enter":
		m.showDetail = !m.showDetail
		return m, nil
	}
	return m, nil
}

func (m Model) requestRefresh() Model {
	m.refreshing = true
	if m.onRefresh != nil {
		m.onRefresh()
	}
	return m
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderBar())
	if m.showDetail && m.hasData && m.state == stateReady {
		b.WriteString("\n")
		b.WriteString(detailStyle.Render(Detail(m.view)))
	}
	b.WriteString("\n\n")
	b.WriteString(renderHelp())
	return b.String()
}

func (m Model) renderBar() string {
	var line string
	style := barStyle

	switch m.state {
	case stateLoading:
		line = m.spinner.View() + " " + render.LoadingText
	case stateError:
		line = render.ErrorText(m.errMsg)
		style = barErrorStyle
		if m.errMsg == refresh.NotSignedInMessage {
			style = barAuthStyle
		}
	default:
		line = brandStyle.Render(render.Title) + strings.TrimPrefix(render.StatusText(m.view), render.Title)
		if m.refreshing {
			line += " " + m.spinner.View()
		}
	}

	if m.width > 0 {
		// two cells of padding
		line = render.Fit(line, m.width-2)
	}
	return style.Render(line)
}

// renderTooltip styles the markdown produced by render.Tooltip for a terminal.
func renderTooltip(md string) string {
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "**"):
			head, rest, _ := strings.Cut(strings.TrimPrefix(line, "**"), "**")
			style := sectionHeaderStyle
			if len(out) == 0 {
				style = titleStyle
			}
			out = append(out, style.Render(head)+dimStyle.Render(rest))
		case strings.HasPrefix(line, "- "):
			label, value, ok := strings.Cut(strings.TrimPrefix(line, "- "), ": ")
			if !ok {
				out = append(out, valueStyle.Render(label))
				continue
			}
			out = append(out, labelStyle.Render(label+": ")+valueStyle.Render(value))
		case strings.HasPrefix(line, "_") && strings.HasSuffix(line, "_"):
			out = append(out, dimStyle.Render(strings.Trim(line, "_")))
		default:
			out = append(out, line)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

func renderHelp() string {
	keys := []struct{ key, desc string }{
		{"r", "refresh"},
		{"d", "details"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+" "+dimStyle.Render(k.desc))
	}
	return strings.Join(parts, dimStyle.Render(" · "))
}

// Detail renders the detail view of v with terminal styling.
func Detail(v refresh.View) string {
	return renderTooltip(render.Tooltip(v))
}
