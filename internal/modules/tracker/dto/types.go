package dto

import "time"

// Block is the wire shape of a schedule block. Length is minutes; Dinger is
// minutes too, and any non-numeric or non-positive value disables it.
type Block struct {
	Task     string  `json:"task" yaml:"task"`
	Length   float64 `json:"length" yaml:"length"`
	Focus    string  `json:"focus,omitempty" yaml:"focus,omitempty"`
	Notes    string  `json:"notes,omitempty" yaml:"notes,omitempty"`
	Hassler  bool    `json:"hassler,omitempty" yaml:"hassler,omitempty"`
	Applause bool    `json:"applause,omitempty" yaml:"applause,omitempty"`
	Dinger   any     `json:"dinger,omitempty" yaml:"dinger,omitempty"`
}

type DeployInput struct {
	Blocks []Block
	// SkipIncomplete drops blocks without a task or length instead of failing.
	SkipIncomplete bool
}

type GoalOutput struct {
	Task    string  `json:"task"`
	Minutes float64 `json:"minutes"`
	Text    string  `json:"text"`
}

type ScheduleOutput struct {
	Blocks []Block      `json:"blocks"`
	Tasks  []string     `json:"tasks"`
	Goals  []GoalOutput `json:"goals"`
}

type StartOutput struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
}

type ProgressRow struct {
	Task          string  `json:"task"`
	GoalMinutes   float64 `json:"goal_minutes"`
	ActualMinutes float64 `json:"actual_minutes"`
	Count         int     `json:"count"`
	Goal          string  `json:"goal"`
	Actual        string  `json:"actual"`
}

type ChartPoint struct {
	Task          string  `json:"task"`
	GoalMinutes   float64 `json:"goal_minutes"`
	ActualMinutes float64 `json:"actual_minutes"`
}

type ProgressOutput struct {
	RunID      string        `json:"run_id,omitempty"`
	Phase      string        `json:"phase"`
	StartedAt  time.Time     `json:"started_at,omitempty"`
	AsOf       time.Time     `json:"as_of,omitempty"`
	BlockIndex int           `json:"block_index"`
	BlockCount int           `json:"block_count"`
	Task       string        `json:"task,omitempty"`
	Focus      string        `json:"focus,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	Elapsed    string        `json:"elapsed"`
	Remaining  string        `json:"remaining"`
	Length     string        `json:"length"`
	Block      string        `json:"block"`
	Paused     bool          `json:"paused"`
	Hassler    bool          `json:"hassler"`
	Complete   bool          `json:"complete"`
	Rows       []ProgressRow `json:"rows"`
	Chart      []ChartPoint  `json:"chart"`
}

type SegmentOutput struct {
	Task   string    `json:"task"`
	Focus  string    `json:"focus,omitempty"`
	Notes  string    `json:"notes,omitempty"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Length float64   `json:"length"`
}

type RecordInput struct {
	Name string
}

type RecordOutput struct {
	Date string `json:"date"`
	ID   int    `json:"id"`
}
