package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrInvalidSchedule = errors.New("invalid schedule")

// TaskName is a normalized task label. Pause, Hassler, Total and TotalActive
// are reserved keys that never name a scheduled block.
type TaskName string

const (
	Pause       TaskName = "pause"
	Hassler     TaskName = "hassler"
	Total       TaskName = "total"
	TotalActive TaskName = "total*"
)

func (t TaskName) String() string { return string(t) }

func (t TaskName) Reserved() bool {
	switch t {
	case Pause, Hassler, Total, TotalActive:
		return true
	}
	return false
}

func NormalizeTask(raw string) TaskName {
	return TaskName(strings.ToLower(strings.TrimSpace(raw)))
}

type Block struct {
	Task     TaskName
	Length   time.Duration
	Focus    string
	Notes    string
	Hassler  bool
	Applause bool
	Dinger   time.Duration
}

type Schedule struct {
	Blocks []Block
	Tasks  []TaskName
}

func (s Schedule) Empty() bool { return len(s.Blocks) == 0 }

// NormalizeBlocks lower-cases and trims task names and collects the distinct
// tasks in first-appearance order. The input slice is not modified.
func NormalizeBlocks(blocks []Block) (Schedule, error) {
	if len(blocks) == 0 {
		return Schedule{}, fmt.Errorf("%w: schedule has no blocks", ErrInvalidSchedule)
	}
	out := make([]Block, len(blocks))
	seen := map[TaskName]bool{}
	var tasks []TaskName
	for i, b := range blocks {
		b.Task = NormalizeTask(string(b.Task))
		switch {
		case b.Task == "":
			return Schedule{}, fmt.Errorf("%w: block %d has an empty task", ErrInvalidSchedule, i)
		case b.Task.Reserved():
			return Schedule{}, fmt.Errorf("%w: block %d uses reserved task %q", ErrInvalidSchedule, i, b.Task)
		case b.Length <= 0:
			return Schedule{}, fmt.Errorf("%w: block %d length must be positive", ErrInvalidSchedule, i)
		}
		if b.Dinger < 0 {
			b.Dinger = 0
		}
		out[i] = b
		if !seen[b.Task] {
			seen[b.Task] = true
			tasks = append(tasks, b.Task)
		}
	}
	return Schedule{Blocks: out, Tasks: tasks}, nil
}

// DropIncomplete filters blocks a form editor leaves behind: no task or no length.
func DropIncomplete(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if NormalizeTask(string(b.Task)) == "" || b.Length <= 0 {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Goals maps every schedule task plus the reserved keys to its planned time.
type Goals map[TaskName]time.Duration

func (s Schedule) Goals() Goals {
	goals := Goals{Pause: 0, Hassler: 0}
	var total time.Duration
	for _, b := range s.Blocks {
		goals[b.Task] += b.Length
		total += b.Length
	}
	goals[Total] = total
	goals[TotalActive] = total
	return goals
}

// Minutes converts a fractional minute count to a duration, rounded to the
// nearest nanosecond so 0.1 and 0.3 minutes stay exact multiples.
func Minutes(m float64) time.Duration {
	return time.Duration(math.Round(m * float64(time.Minute)))
}

func ToMinutes(d time.Duration) float64 {
	return d.Minutes()
}

// ParseDinger reads a dinger setting as found in schedule files. Anything that
// is not a positive number means no dinger.
func ParseDinger(raw any) time.Duration {
	var m float64
	switch v := raw.(type) {
	case int:
		m = float64(v)
	case int64:
		m = float64(v)
	case float64:
		m = v
	case float32:
		m = float64(v)
	default:
		return 0
	}
	if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return 0
	}
	return Minutes(m)
}
