package domain

import "time"

type CueKind string

const (
	CueBlockStarted    CueKind = "block_started"
	CueDing            CueKind = "ding"
	CueApplause        CueKind = "applause"
	CueNext            CueKind = "next"
	CuePaused          CueKind = "paused"
	CueResumed         CueKind = "resumed"
	CueHasslerPrompt   CueKind = "hassler_prompt"
	CueSessionFinished CueKind = "session_finished"
)

// Cue is a fire-and-forget notification raised by the session engine.
type Cue struct {
	Kind  CueKind
	Task  TaskName
	Focus string
	At    time.Time
}

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseHassler  Phase = "hassler"
	PhaseRunning  Phase = "running"
	PhasePaused   Phase = "paused"
	PhaseComplete Phase = "complete"
)

func (p Phase) Active() bool {
	return p == PhaseHassler || p == PhaseRunning || p == PhasePaused
}

type ProgressRow struct {
	Task       TaskName
	Goal       time.Duration
	Actual     time.Duration
	Count      int
	GoalText   string
	ActualText string
}

type ChartPoint struct {
	Task          TaskName
	GoalMinutes   float64
	ActualMinutes float64
}

// Status is a consistent view of the session taken at the last tick.
type Status struct {
	RunID      string
	Phase      Phase
	StartedAt  time.Time
	AsOf       time.Time
	BlockIndex int
	BlockCount int
	Task       TaskName
	Focus      string
	Notes      string
	Length     time.Duration
	Elapsed    time.Duration
	Remaining  time.Duration
	Paused     bool
	Hassler    bool
	Complete   bool
	Rows       []ProgressRow
	Chart      []ChartPoint
}

// BuildRows pairs goals with the ledger in the order tasks, pause, hassler,
// total, total*, and the chart triples for tasks, pause and hassler.
func BuildRows(tasks []TaskName, goals Goals, snap LedgerSnapshot) ([]ProgressRow, []ChartPoint) {
	order := append(append([]TaskName{}, tasks...), Pause, Hassler, Total, TotalActive)
	rows := make([]ProgressRow, 0, len(order))
	chart := make([]ChartPoint, 0, len(tasks)+2)
	for _, t := range order {
		e, _ := snap.Get(t)
		goal := goals[t]
		rows = append(rows, ProgressRow{
			Task:       t,
			Goal:       goal,
			Actual:     e.Duration,
			Count:      e.Count,
			GoalText:   FormatCompact(goal),
			ActualText: FormatCompact(e.Duration),
		})
		if t != Total && t != TotalActive {
			chart = append(chart, ChartPoint{Task: t, GoalMinutes: goal.Minutes(), ActualMinutes: e.Duration.Minutes()})
		}
	}
	return rows, chart
}
