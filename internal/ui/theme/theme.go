package theme

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha.
var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")
)

var (
	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Foreground(Text).
		Padding(0, 1)

	PaneActive = Pane.BorderForeground(Lavender)

	Bar = lipgloss.NewStyle().Background(Mantle).Foreground(Text)

	Title  = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted  = lipgloss.NewStyle().Foreground(Subtext0)
	Hot    = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Goal   = lipgloss.NewStyle().Foreground(Surface1)
	Actual = lipgloss.NewStyle().Foreground(Green)
	Over   = lipgloss.NewStyle().Foreground(Red)
	Alert  = lipgloss.NewStyle().Foreground(Yellow).Bold(true)
)

// PhaseStyle colours the phase badge in the header.
func PhaseStyle(phase string) lipgloss.Style {
	switch phase {
	case "running":
		return Actual.Bold(true)
	case "paused":
		return Alert
	case "hassler":
		return Hot
	case "complete":
		return Title
	default:
		return Muted
	}
}
