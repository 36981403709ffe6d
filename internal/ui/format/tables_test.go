package format_test

import (
	"bytes"
	"strings"
	"testing"

	archivedto "prodman/internal/modules/archive/dto"
	trackerdto "prodman/internal/modules/tracker/dto"
	"prodman/internal/ui/format"
)

func TestHeadlineByPhase(t *testing.T) {
	t.Parallel()
	base := trackerdto.ProgressOutput{Phase: "running", BlockIndex: 1, BlockCount: 8, Task: "work", Block: "03:00 / 25:00", Remaining: "00:22:00", Focus: "report"}
	cases := []struct {
		name string
		mut  func(p *trackerdto.ProgressOutput)
		want string
	}{
		{"idle", func(p *trackerdto.ProgressOutput) { *p = trackerdto.ProgressOutput{Phase: "idle"} }, "no session"},
		{"running", func(*trackerdto.ProgressOutput) {}, "[2/8] work  03:00 / 25:00  remaining 00:22:00  focus: report"},
		{"paused", func(p *trackerdto.ProgressOutput) { p.Paused = true }, "[2/8] work (paused)"},
		{"hassler", func(p *trackerdto.ProgressOutput) { p.Hassler = true }, "waiting for okay to start work"},
		{"complete", func(p *trackerdto.ProgressOutput) { p.Complete = true }, "session complete"},
	}
	for _, tc := range cases {
		p := base
		tc.mut(&p)
		if got := format.Headline(p); !strings.Contains(got, tc.want) {
			t.Fatalf("%s: expected %q in %q", tc.name, tc.want, got)
		}
	}
}

func TestProgressTableListsRows(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	format.Progress(&buf, trackerdto.ProgressOutput{
		Phase: "running", BlockCount: 1, Task: "work",
		Rows: []trackerdto.ProgressRow{
			{Task: "work", Goal: "25:00", Actual: "03:00", Count: 0},
			{Task: "total", Goal: "25:00", Actual: "03:00"},
		},
	}, 0)
	out := buf.String()
	for _, want := range []string{"TASK", "work", "25:00", "03:00", "total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestEmptyListsSaySo(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	format.Templates(&buf, nil, 0)
	format.History(&buf, nil, 0)
	if !strings.Contains(buf.String(), "(no templates)") || !strings.Contains(buf.String(), "(no sessions)") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestSummaryIncludesFocusTable(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	format.Summary(&buf, archivedto.SummaryOutput{
		Key:   archivedto.HistoryKey{Date: "2026-03-02", ID: 1},
		Name:  "morning",
		Tasks: []archivedto.TaskSummaryOutput{{Task: "work", Text: "20:00 / 25:00"}},
		Focus: []archivedto.FocusSummaryOutput{{Task: "work", Focus: "report", Text: "20:00 / 25:00"}},
	}, 0)
	out := buf.String()
	for _, want := range []string{"2026-03-02#1 morning", "20:00 / 25:00", "report"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestIsTerminalRejectsBuffers(t *testing.T) {
	t.Parallel()
	if format.IsTerminal(&bytes.Buffer{}) {
		t.Fatalf("a buffer is not a terminal")
	}
}
