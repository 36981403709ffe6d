package domain

import (
	"errors"
	"time"
)

var (
	ErrSegmentOpen   = errors.New("timeline segment already open")
	ErrNoOpenSegment = errors.New("no open timeline segment")
)

type Segment struct {
	Start time.Time
	End   time.Time
	Label TaskName
	Focus string
	Notes string
}

func (s Segment) Open() bool { return s.End.IsZero() }

// Entry is a segment with its end resolved and its length in minutes.
type Entry struct {
	Start         time.Time
	End           time.Time
	Label         TaskName
	Focus         string
	Notes         string
	LengthMinutes float64
}

// Timeline is an append-only log of segments with at most one open at a time.
type Timeline struct {
	segments []Segment
}

func (t *Timeline) Open(at time.Time, label TaskName, focus, notes string) error {
	if t.HasOpen() {
		return ErrSegmentOpen
	}
	if n := len(t.segments); n > 0 && at.Before(t.segments[n-1].End) {
		at = t.segments[n-1].End
	}
	t.segments = append(t.segments, Segment{Start: at, Label: label, Focus: focus, Notes: notes})
	return nil
}

func (t *Timeline) Close(at time.Time) error {
	if !t.HasOpen() {
		return ErrNoOpenSegment
	}
	last := &t.segments[len(t.segments)-1]
	if at.Before(last.Start) {
		at = last.Start
	}
	last.End = at
	return nil
}

func (t *Timeline) HasOpen() bool {
	n := len(t.segments)
	return n > 0 && t.segments[n-1].Open()
}

func (t *Timeline) Len() int { return len(t.segments) }

func (t *Timeline) Segments() []Segment {
	return append([]Segment(nil), t.segments...)
}

// Materialize resolves an open segment's end to now without closing it.
func (t *Timeline) Materialize(now time.Time) []Entry {
	out := make([]Entry, 0, len(t.segments))
	for _, s := range t.segments {
		end := s.End
		if s.Open() {
			end = now
			if end.Before(s.Start) {
				end = s.Start
			}
		}
		out = append(out, Entry{
			Start:         s.Start,
			End:           end,
			Label:         s.Label,
			Focus:         s.Focus,
			Notes:         s.Notes,
			LengthMinutes: end.Sub(s.Start).Minutes(),
		})
	}
	return out
}

// SessionRecord is what a finished or running session hands to history.
type SessionRecord struct {
	RunID     string
	StartedAt time.Time
	Complete  bool
	Timeline  []Entry
	Blocks    []Block
}
