package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"prodman/internal/ui/theme"
)

// PromptSubmitMsg carries the confirmed line.
type PromptSubmitMsg struct{ Input string }

type PromptCancelMsg struct{}

var (
	promptStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// Anything else typed is still submitted; the tracker logs and ignores it.
var commandHints = []string{
	"okay",
	"pause",
	"unpause",
	"next",
	"finish",
	"record [name]",
}

// Prompt is a one-line command entry overlay.
type Prompt struct {
	input   textinput.Model
	visible bool
	title   string
	width   int
}

func NewPrompt() Prompt {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 128
	return Prompt{input: ti, title: "Command"}
}

func (p Prompt) Visible() bool { return p.visible }

// Open shows the prompt with a title and an initial value.
func (p *Prompt) Open(title, value string) tea.Cmd {
	p.visible = true
	p.title = title
	p.input.SetValue(value)
	p.input.CursorEnd()
	return p.input.Focus()
}

func (p *Prompt) SetWidth(w int) { p.width = w }

func (p Prompt) Update(msg tea.Msg) (Prompt, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PromptCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PromptSubmitMsg{Input: val} }
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Prompt) View() string {
	if !p.visible {
		return ""
	}
	prefix := strings.ToLower(strings.TrimSpace(p.input.Value()))
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(p.title) + "\n")
	sb.WriteString("> " + p.input.View() + "\n")
	var matching []string
	for _, h := range commandHints {
		if prefix == "" || strings.HasPrefix(h, prefix) {
			matching = append(matching, h)
		}
	}
	if len(matching) > 0 {
		sb.WriteString("\n")
		for _, h := range matching {
			sb.WriteString(hintStyle.Render("  "+h) + "\n")
		}
	}
	w := p.width
	if w < 20 {
		w = 48
	}
	return promptStyle.Width(w - 2).Render(sb.String())
}
