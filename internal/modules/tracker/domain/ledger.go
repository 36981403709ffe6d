package domain

import "time"

type Tally struct {
	Duration time.Duration
	Count    int
}

// Ledger accumulates time and completed episodes per task. Keys are the
// schedule tasks followed by Pause and Hassler.
type Ledger struct {
	order   []TaskName
	entries map[TaskName]Tally
}

func NewLedger(tasks []TaskName) *Ledger {
	l := &Ledger{}
	l.Reset(tasks)
	return l
}

func (l *Ledger) Reset(tasks []TaskName) {
	l.order = make([]TaskName, 0, len(tasks)+2)
	l.entries = make(map[TaskName]Tally, len(tasks)+2)
	for _, t := range append(append([]TaskName{}, tasks...), Pause, Hassler) {
		if _, ok := l.entries[t]; ok {
			continue
		}
		l.order = append(l.order, t)
		l.entries[t] = Tally{}
	}
}

// Add credits delta to task. Non-positive deltas are ignored.
func (l *Ledger) Add(task TaskName, delta time.Duration) {
	if delta <= 0 {
		return
	}
	l.ensure(task)
	e := l.entries[task]
	e.Duration += delta
	l.entries[task] = e
}

func (l *Ledger) IncrementCount(task TaskName) {
	l.ensure(task)
	e := l.entries[task]
	e.Count++
	l.entries[task] = e
}

func (l *Ledger) Get(task TaskName) Tally {
	return l.entries[task]
}

func (l *Ledger) ensure(task TaskName) {
	if _, ok := l.entries[task]; ok {
		return
	}
	l.order = append(l.order, task)
	l.entries[task] = Tally{}
}

type LedgerEntry struct {
	Task     TaskName
	Duration time.Duration
	Count    int
	Text     string
}

// LedgerSnapshot is a detached copy; Total and TotalActive are appended last.
type LedgerSnapshot struct {
	Entries []LedgerEntry
}

func (l *Ledger) Snapshot() LedgerSnapshot {
	entries := make([]LedgerEntry, 0, len(l.order)+2)
	var total, active Tally
	for _, t := range l.order {
		e := l.entries[t]
		entries = append(entries, LedgerEntry{Task: t, Duration: e.Duration, Count: e.Count, Text: FormatCompact(e.Duration)})
		total.Duration += e.Duration
		total.Count += e.Count
		if t != Pause && t != Hassler {
			active.Duration += e.Duration
			active.Count += e.Count
		}
	}
	entries = append(entries,
		LedgerEntry{Task: Total, Duration: total.Duration, Count: total.Count, Text: FormatCompact(total.Duration)},
		LedgerEntry{Task: TotalActive, Duration: active.Duration, Count: active.Count, Text: FormatCompact(active.Duration)},
	)
	return LedgerSnapshot{Entries: entries}
}

func (s LedgerSnapshot) Get(task TaskName) (LedgerEntry, bool) {
	for _, e := range s.Entries {
		if e.Task == task {
			return e, true
		}
	}
	return LedgerEntry{}, false
}
