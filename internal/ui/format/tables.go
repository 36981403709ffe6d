package format

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	archivedto "prodman/internal/modules/archive/dto"
	trackerdto "prodman/internal/modules/tracker/dto"
)

func newWriter(w io.Writer, width int) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true
	if width > 0 {
		tw.SetAllowedRowLength(width)
	}
	return tw
}

// Headline is the one-line description of where a session stands.
func Headline(p trackerdto.ProgressOutput) string {
	switch {
	case p.Phase == "idle":
		return "no session"
	case p.Complete:
		return "session complete"
	}
	state := p.Task
	switch {
	case p.Hassler:
		state = "waiting for okay to start " + p.Task
	case p.Paused:
		state = p.Task + " (paused)"
	}
	line := fmt.Sprintf("[%d/%d] %s  %s  remaining %s", p.BlockIndex+1, p.BlockCount, state, p.Block, p.Remaining)
	if p.Focus != "" {
		line += "  focus: " + p.Focus
	}
	return line
}

// Progress renders the headline and the goal/actual rows.
func Progress(w io.Writer, p trackerdto.ProgressOutput, width int) {
	_, _ = fmt.Fprintln(w, Headline(p))
	if len(p.Rows) == 0 {
		return
	}
	tw := newWriter(w, width)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})
	tw.AppendHeader(table.Row{"Task", "Goal", "Actual", "Count"})
	for _, r := range p.Rows {
		tw.AppendRow(table.Row{r.Task, r.Goal, r.Actual, r.Count})
	}
	tw.Render()
}

func Goals(w io.Writer, s trackerdto.ScheduleOutput, width int) {
	tw := newWriter(w, width)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})
	tw.AppendHeader(table.Row{"Task", "Minutes", "Goal"})
	for _, g := range s.Goals {
		tw.AppendRow(table.Row{g.Task, strconv.FormatFloat(g.Minutes, 'f', -1, 64), g.Text})
	}
	tw.Render()
}

func Templates(w io.Writer, items []archivedto.TemplateOutput, width int) {
	tw := newWriter(w, width)
	tw.AppendHeader(table.Row{"Template", "Blocks", "Minutes", "Tasks"})
	for _, t := range items {
		var total float64
		var tasks []string
		seen := map[string]bool{}
		for _, b := range t.Blocks {
			total += b.Length
			if !seen[b.Task] {
				seen[b.Task] = true
				tasks = append(tasks, b.Task)
			}
		}
		tw.AppendRow(table.Row{t.ID, len(t.Blocks), strconv.FormatFloat(total, 'f', -1, 64), strings.Join(tasks, ", ")})
	}
	if len(items) == 0 {
		tw.AppendRow(table.Row{"(no templates)", 0, "0", "-"})
	}
	tw.Render()
}

// Blocks renders one template or schedule block by block.
func Blocks(w io.Writer, blocks []archivedto.Block, width int) {
	tw := newWriter(w, width)
	tw.AppendHeader(table.Row{"#", "Task", "Length", "Focus", "Hassler", "Applause", "Dinger"})
	for i, b := range blocks {
		dinger := "-"
		if b.Dinger > 0 {
			dinger = strconv.FormatFloat(b.Dinger, 'f', -1, 64)
		}
		tw.AppendRow(table.Row{i + 1, b.Task, strconv.FormatFloat(b.Length, 'f', -1, 64), b.Focus, yesNo(b.Hassler), yesNo(b.Applause), dinger})
	}
	tw.Render()
}

func History(w io.Writer, items []archivedto.HistoryOutput, width int) {
	tw := newWriter(w, width)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})
	tw.AppendHeader(table.Row{"Key", "Name", "Recorded", "Segments", "Minutes"})
	for _, h := range items {
		var total float64
		for _, s := range h.Timeline {
			total += s.Length
		}
		tw.AppendRow(table.Row{h.Key.String(), h.Name, h.RecordedAt.Local().Format(time.DateTime), len(h.Timeline), strconv.FormatFloat(total, 'f', 1, 64)})
	}
	if len(items) == 0 {
		tw.AppendRow(table.Row{"-", "(no sessions)", "-", 0, "0.0"})
	}
	tw.Render()
}

// Summary renders the per-task table followed by the per-focus table.
func Summary(w io.Writer, s archivedto.SummaryOutput, width int) {
	title := s.Key.String()
	if s.Name != "" {
		title += " " + s.Name
	}
	_, _ = fmt.Fprintln(w, title)

	tw := newWriter(w, width)
	tw.AppendHeader(table.Row{"Task", "Actual / Goal"})
	for _, t := range s.Tasks {
		tw.AppendRow(table.Row{t.Task, t.Text})
	}
	tw.Render()

	if len(s.Focus) == 0 {
		return
	}
	fw := newWriter(w, width)
	fw.AppendHeader(table.Row{"Task", "Focus", "Actual / Goal"})
	for _, f := range s.Focus {
		fw.AppendRow(table.Row{f.Task, f.Focus, f.Text})
	}
	fw.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

// IsTerminal reports whether out is an interactive terminal.
func IsTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Width is the column budget for tables written to out. Zero means unbounded.
func Width(out io.Writer) int {
	if file, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(file.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if v, err := strconv.Atoi(cols); err == nil && v > 0 {
			return v
		}
	}
	return 0
}
