package tui

import "github.com/charmbracelet/lipgloss"

// ─── Color Palette (Catppuccin Mocha) ───────────────────────────────────────

var (
	colorMantle   = lipgloss.Color("#181825") // deeper bg
	colorSurface0 = lipgloss.Color("#313244") // bar bg
	colorText     = lipgloss.Color("#CDD6F4") // primary text
	colorSubtext  = lipgloss.Color("#A6ADC8") // secondary text
	colorDim      = lipgloss.Color("#585B70") // muted

	colorAccent   = lipgloss.Color("#CBA6F7") // mauve – primary accent
	colorBlue     = lipgloss.Color("#89B4FA") // section headers
	colorSapphire = lipgloss.Color("#74C7EC") // keys
	colorRed      = lipgloss.Color("#F38BA8") // error
	colorPeach    = lipgloss.Color("#FAB387") // signed out
	colorLavender = lipgloss.Color("#B4BEFE") // titles
	colorRose     = lipgloss.Color("#F5E0DC") // values
)

// ─── Styles ─────────────────────────────────────────────────────────────────

var (
	barStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorSurface0).
			Padding(0, 1)

	barErrorStyle = lipgloss.NewStyle().
			Foreground(colorMantle).
			Background(colorRed).
			Bold(true).
			Padding(0, 1)

	barAuthStyle = lipgloss.NewStyle().
			Foreground(colorMantle).
			Background(colorPeach).
			Bold(true).
			Padding(0, 1)

	brandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			Background(colorSurface0)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLavender)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorRose)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorSapphire).
			Bold(true)

	detailStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			PaddingTop(1)
)
