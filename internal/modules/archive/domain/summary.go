package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	pauseTask   = "pause"
	hasslerTask = "hassler"
	totalTask   = "total"
	activeTask  = "total*"
)

type TaskSummary struct {
	Task          string
	ActualMinutes float64
	GoalMinutes   float64
	// HasGoal is false for pause and hassler, which only report time spent.
	HasGoal bool
	Text    string
}

type FocusSummary struct {
	Task          string
	Focus         string
	ActualMinutes float64
	GoalMinutes   float64
	Text          string
}

type Summary struct {
	Tasks []TaskSummary
	Focus []FocusSummary
}

type focusKey struct{ task, focus string }

// Summarize compares a recorded timeline against its schedule. Tasks appear
// in schedule order, followed by pause, hassler, total and total*.
func Summarize(entry HistoryEntry) Summary {
	goals := map[string]float64{}
	var order []string
	focusGoals := map[focusKey]float64{}
	var focusOrder []focusKey
	for _, b := range entry.Schedule {
		if _, ok := goals[b.Task]; !ok {
			order = append(order, b.Task)
		}
		goals[b.Task] += b.Length
		k := focusKey{b.Task, b.Focus}
		if _, ok := focusGoals[k]; !ok {
			focusOrder = append(focusOrder, k)
		}
		focusGoals[k] += b.Length
	}

	actual := map[string]float64{}
	focusActual := map[focusKey]float64{}
	var total, active float64
	for _, s := range entry.Timeline {
		if _, ok := goals[s.Task]; !ok && s.Task != pauseTask && s.Task != hasslerTask {
			if _, seen := actual[s.Task]; !seen {
				order = append(order, s.Task)
			}
		}
		actual[s.Task] += s.Length
		total += s.Length
		if s.Task != pauseTask && s.Task != hasslerTask {
			active += s.Length
			focusActual[focusKey{s.Task, s.Focus}] += s.Length
		}
	}
	var goalTotal float64
	for _, g := range goals {
		goalTotal += g
	}

	out := Summary{}
	for _, task := range order {
		out.Tasks = append(out.Tasks, versus(task, actual[task], goals[task]))
	}
	for _, task := range []string{pauseTask, hasslerTask} {
		out.Tasks = append(out.Tasks, TaskSummary{Task: task, ActualMinutes: actual[task], Text: formatMinutes(actual[task])})
	}
	out.Tasks = append(out.Tasks, versus(totalTask, total, goalTotal), versus(activeTask, active, goalTotal))

	for _, k := range focusOrder {
		out.Focus = append(out.Focus, FocusSummary{
			Task:          k.task,
			Focus:         k.focus,
			ActualMinutes: focusActual[k],
			GoalMinutes:   focusGoals[k],
			Text:          formatMinutes(focusActual[k]) + " / " + formatMinutes(focusGoals[k]),
		})
	}
	return out
}

func versus(task string, actual, goal float64) TaskSummary {
	return TaskSummary{
		Task:          task,
		ActualMinutes: actual,
		GoalMinutes:   goal,
		HasGoal:       true,
		Text:          formatMinutes(actual) + " / " + formatMinutes(goal),
	}
}

// formatMinutes renders MM:SS, or HH:MM:SS once an hour is reached.
func formatMinutes(m float64) string {
	if m < 0 || math.IsNaN(m) {
		m = 0
	}
	total := int64(time.Duration(math.Round(m*float64(time.Minute))) / time.Second)
	h, rest := total/3600, total%3600
	if h == 0 {
		return fmt.Sprintf("%02d:%02d", rest/60, rest%60)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, rest/60, rest%60)
}
