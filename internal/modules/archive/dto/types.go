package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "prodman/internal/platform/errors"
)

// Block is a schedule block as exchanged with templates and history.
// Length and Dinger are minutes.
type Block struct {
	Task     string  `json:"task" yaml:"task"`
	Length   float64 `json:"length" yaml:"length"`
	Focus    string  `json:"focus,omitempty" yaml:"focus,omitempty"`
	Notes    string  `json:"notes,omitempty" yaml:"notes,omitempty"`
	Hassler  bool    `json:"hassler,omitempty" yaml:"hassler,omitempty"`
	Applause bool    `json:"applause,omitempty" yaml:"applause,omitempty"`
	Dinger   float64 `json:"dinger,omitempty" yaml:"dinger,omitempty"`
}

type Segment struct {
	Task   string    `json:"task"`
	Focus  string    `json:"focus,omitempty"`
	Notes  string    `json:"notes,omitempty"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Length float64   `json:"length"`
}

type SaveTemplateInput struct {
	ID     string
	Blocks []Block
}

type SaveTemplateOutput struct {
	ID     string `json:"id"`
	Result string `json:"result"`
}

type TemplateOutput struct {
	ID     string  `json:"id"`
	Blocks []Block `json:"blocks"`
}

type HistoryKey struct {
	Date string `json:"date"`
	ID   int    `json:"id"`
}

func (k HistoryKey) String() string { return fmt.Sprintf("%s#%d", k.Date, k.ID) }

// ParseHistoryKey reads the date#id form printed by String.
func ParseHistoryKey(raw string) (HistoryKey, error) {
	date, idPart, ok := strings.Cut(strings.TrimSpace(raw), "#")
	if !ok {
		return HistoryKey{}, fmt.Errorf("history key %q must look like date#id: %w", raw, apperrors.ErrInvalidInput)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return HistoryKey{}, fmt.Errorf("history key %q has a bad date: %w", raw, apperrors.ErrInvalidInput)
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id < 0 {
		return HistoryKey{}, fmt.Errorf("history key %q has a bad id: %w", raw, apperrors.ErrInvalidInput)
	}
	return HistoryKey{Date: date, ID: id}, nil
}

type RecordSessionInput struct {
	StartedAt time.Time
	Name      string
	RunID     string
	Timeline  []Segment
	Schedule  []Block
}

type HistoryQuery struct {
	From string
	To   string
}

type HistoryOutput struct {
	Key        HistoryKey `json:"key"`
	Name       string     `json:"name,omitempty"`
	RunID      string     `json:"run_id,omitempty"`
	RecordedAt time.Time  `json:"recorded_at"`
	Timeline   []Segment  `json:"timeline"`
	Schedule   []Block    `json:"schedule"`
}

type TaskSummaryOutput struct {
	Task          string  `json:"task"`
	ActualMinutes float64 `json:"actual_minutes"`
	GoalMinutes   float64 `json:"goal_minutes,omitempty"`
	Text          string  `json:"text"`
}

type FocusSummaryOutput struct {
	Task          string  `json:"task"`
	Focus         string  `json:"focus"`
	ActualMinutes float64 `json:"actual_minutes"`
	GoalMinutes   float64 `json:"goal_minutes"`
	Text          string  `json:"text"`
}

type SummaryOutput struct {
	Key   HistoryKey           `json:"key"`
	Name  string               `json:"name,omitempty"`
	Tasks []TaskSummaryOutput  `json:"tasks"`
	Focus []FocusSummaryOutput `json:"focus"`
}

type ExportInput struct {
	Key HistoryKey
	Dir string
}

type ExportOutput struct {
	Key  HistoryKey
	Path string
}
