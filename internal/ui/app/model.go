package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	trackerdto "prodman/internal/modules/tracker/dto"
	"prodman/internal/ui/components"
	"prodman/internal/ui/format"
	"prodman/internal/ui/theme"
)

// TrackerPort is what the dashboard needs from the tracker.
type TrackerPort interface {
	Start(ctx context.Context) (trackerdto.StartOutput, error)
	Submit(ctx context.Context, token string) error
	Progress(ctx context.Context) (trackerdto.ProgressOutput, error)
	Record(ctx context.Context, name string) (trackerdto.RecordOutput, error)
}

// ─── async messages ───────────────────────────────────────────────────────────

type tickMsg time.Time

type progressMsg struct {
	out trackerdto.ProgressOutput
	err error
}

type startedMsg struct {
	out trackerdto.StartOutput
	err error
}

type submittedMsg struct {
	token string
	err   error
}

type recordedMsg struct {
	out trackerdto.RecordOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Start   key.Binding
	Okay    key.Binding
	Pause   key.Binding
	Unpause key.Binding
	Next    key.Binding
	Finish  key.Binding
	Record  key.Binding
	Prompt  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Okay:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "okay")),
		Pause:   key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause")),
		Unpause: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unpause")),
		Next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next block")),
		Finish:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "finish")),
		Record:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record")),
		Prompt:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Unpause, k.Next, k.Finish, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Okay, k.Record},
		{k.Pause, k.Unpause, k.Next, k.Finish},
		{k.Prompt, k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the tracker dashboard. It polls progress once per interval and
// turns key presses into tracker commands.
type Model struct {
	tracker  TrackerPort
	interval time.Duration

	keys     keyMap
	help     help.Model
	showHelp bool
	prompt   components.Prompt
	// prompted is set once the hassler prompt has been raised for the
	// current wait, so dismissing it does not reopen it every tick.
	prompted bool

	progress trackerdto.ProgressOutput
	status   string
	width    int
	height   int
}

func NewModel(tracker TrackerPort, interval time.Duration) Model {
	if interval <= 0 {
		interval = time.Second
	}
	return Model{
		tracker:  tracker,
		interval: interval,
		keys:     defaultKeys(),
		help:     help.New(),
		prompt:   components.NewPrompt(),
		progress: trackerdto.ProgressOutput{Phase: "idle"},
		status:   "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Refresh(), m.tickCmd())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prompt.SetWidth(min(m.width-4, 64))
		m.help.Width = m.width
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.Refresh(), m.tickCmd())

	case progressMsg:
		if msg.err != nil {
			m.status = "progress: " + msg.err.Error()
			return m, nil
		}
		m.progress = msg.out
		if !msg.out.Hassler {
			m.prompted = false
			return m, nil
		}
		if !m.prompted && !m.prompt.Visible() {
			m.prompted = true
			return m, m.prompt.Open("Type okay to start "+msg.out.Task, "")
		}
		return m, nil

	case startedMsg:
		if msg.err != nil {
			m.status = "start failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "session started: " + msg.out.RunID
		return m, m.Refresh()

	case submittedMsg:
		if msg.err != nil {
			m.status = msg.token + ": " + msg.err.Error()
			return m, nil
		}
		m.status = "sent " + msg.token
		return m, m.Refresh()

	case recordedMsg:
		if msg.err != nil {
			m.status = "record failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("recorded %s#%d", msg.out.Date, msg.out.ID)
		}
		return m, nil

	case components.PromptSubmitMsg:
		return m.execute(msg.Input)

	case components.PromptCancelMsg:
		m.status = "ready"
		return m, nil
	}

	// The prompt owns all input while open.
	if m.prompt.Visible() {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.showHelp {
		if key.Matches(keyMsg, m.keys.Help) || keyMsg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.showHelp = true
	case key.Matches(keyMsg, m.keys.Prompt):
		return m, m.prompt.Open("Command", "")
	case key.Matches(keyMsg, m.keys.Start):
		return m, m.startCmd()
	case key.Matches(keyMsg, m.keys.Okay):
		return m, m.submitCmd("okay")
	case key.Matches(keyMsg, m.keys.Pause):
		return m, m.submitCmd("pause")
	case key.Matches(keyMsg, m.keys.Unpause):
		return m, m.submitCmd("unpause")
	case key.Matches(keyMsg, m.keys.Next):
		return m, m.submitCmd("next")
	case key.Matches(keyMsg, m.keys.Finish):
		return m, m.submitCmd("finish")
	case key.Matches(keyMsg, m.keys.Record):
		return m, m.recordCmd("")
	}
	return m, nil
}

func (m Model) execute(input string) (tea.Model, tea.Cmd) {
	if input == "" {
		m.status = "ready"
		return m, nil
	}
	if name, ok := strings.CutPrefix(input, "record"); ok && (name == "" || name[0] == ' ') {
		return m, m.recordCmd(strings.TrimSpace(name))
	}
	return m, m.submitCmd(input)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.prompt.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.prompt.View())
	default:
		content = m.renderRows()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m Model) renderHeader() string {
	p := m.progress
	badge := theme.PhaseStyle(p.Phase).Render(" " + strings.ToUpper(p.Phase) + " ")
	line := theme.Title.Render("prodman") + "  " + badge + "  " + format.Headline(p)
	if p.Notes != "" && !p.Complete {
		line += "\n" + theme.Muted.Render(p.Notes)
	}
	return theme.Bar.Width(m.width).Render(line) + "\n"
}

const barWidth = 30

func (m Model) renderRows() string {
	rows := m.progress.Rows
	if len(rows) == 0 {
		return theme.Pane.Render(theme.Muted.Render("no schedule deployed"))
	}
	var scale float64
	for _, r := range rows {
		if isTotal(r.Task) {
			continue
		}
		scale = math.Max(scale, math.Max(r.GoalMinutes, r.ActualMinutes))
	}
	taskW := 8
	for _, r := range rows {
		taskW = max(taskW, lipgloss.Width(r.Task))
	}

	var sb strings.Builder
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("%-*s  %8s  %8s  %5s", taskW, "task", "goal", "actual", "count")) + "\n")
	for _, r := range rows {
		name := fmt.Sprintf("%-*s", taskW, r.Task)
		if r.Task == m.progress.Task && !m.progress.Complete {
			name = theme.Hot.Render(name)
		}
		count := ""
		if r.Count > 0 {
			count = fmt.Sprint(r.Count)
		}
		line := fmt.Sprintf("%s  %8s  %8s  %5s", name, r.Goal, r.Actual, count)
		if !isTotal(r.Task) && scale > 0 {
			line += "  " + renderBar(r.GoalMinutes, r.ActualMinutes, scale, barWidth)
		}
		sb.WriteString(line + "\n")
	}
	return theme.PaneActive.Render(strings.TrimRight(sb.String(), "\n"))
}

// renderBar draws actual against goal on a shared scale: filled cells up to
// the goal, the unmet part of the goal dimmed, overshoot in red.
func renderBar(goal, actual, scale float64, width int) string {
	cells := func(v float64) int {
		return int(math.Round(v / scale * float64(width)))
	}
	g, a := cells(goal), cells(actual)
	met := min(a, g)
	var sb strings.Builder
	sb.WriteString(theme.Actual.Render(strings.Repeat("█", met)))
	if g > met {
		sb.WriteString(theme.Goal.Render(strings.Repeat("░", g-met)))
	}
	if a > g {
		sb.WriteString(theme.Over.Render(strings.Repeat("█", a-g)))
	}
	return sb.String()
}

func isTotal(task string) bool {
	return task == "total" || task == "total*"
}

func (m Model) renderFooter() string {
	left := m.status
	right := m.help.ShortHelpView(m.keys.ShortHelp())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return "\n" + theme.Bar.Width(m.width).Render(left+strings.Repeat(" ", gap)+right)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Refresh loads progress now instead of waiting for the next tick.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		out, err := m.tracker.Progress(context.Background())
		return progressMsg{out: out, err: err}
	}
}

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.tracker.Start(context.Background())
		return startedMsg{out: out, err: err}
	}
}

func (m Model) submitCmd(token string) tea.Cmd {
	return func() tea.Msg {
		return submittedMsg{token: token, err: m.tracker.Submit(context.Background(), token)}
	}
}

func (m Model) recordCmd(name string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.tracker.Record(context.Background(), name)
		return recordedMsg{out: out, err: err}
	}
}
