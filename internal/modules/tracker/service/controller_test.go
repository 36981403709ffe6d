package service_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"prodman/internal/modules/tracker/domain"
	"prodman/internal/modules/tracker/service"
	apperrors "prodman/internal/platform/errors"
	"prodman/internal/platform/logging"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeID struct{}

func (fakeID) New() string { return "run-1" }

type recordingCues struct {
	mu   sync.Mutex
	cues []domain.Cue
}

func (r *recordingCues) Play(cue domain.Cue) {
	r.mu.Lock()
	r.cues = append(r.cues, cue)
	r.mu.Unlock()
}

func (r *recordingCues) count(kind domain.CueKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.cues {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func newController(t *testing.T, blocks ...domain.Block) (*service.Controller, *manualClock, *recordingCues) {
	t.Helper()
	clk := newManualClock()
	cues := &recordingCues{}
	ctrl := service.NewController(service.Config{TickInterval: time.Second}, clk, fakeID{}, cues, logging.Discard())
	if _, err := ctrl.Deploy(blocks); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if _, err := ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return ctrl, clk, cues
}

func submit(t *testing.T, ctrl *service.Controller, token string) {
	t.Helper()
	if err := ctrl.Submit(domain.ParseCommand(token)); err != nil {
		t.Fatalf("submit %s: %v", token, err)
	}
	ctrl.Tick()
}

func row(t *testing.T, st domain.Status, task domain.TaskName) domain.ProgressRow {
	t.Helper()
	for _, r := range st.Rows {
		if r.Task == task {
			return r
		}
	}
	t.Fatalf("no progress row for %s", task)
	return domain.ProgressRow{}
}

func TestPauseResumeCreditsExactlyTheBlockLength(t *testing.T) {
	t.Parallel()
	block := domain.Block{Task: "work", Length: 2 * time.Minute}

	plain, clk, _ := newController(t, block)
	clk.Advance(2*time.Minute + 5*time.Second)
	plain.Tick()

	paused, pclk, _ := newController(t, block)
	pclk.Advance(30 * time.Second)
	paused.Tick()
	submit(t, paused, "pause")
	pclk.Advance(45 * time.Second)
	paused.Tick()
	submit(t, paused, "unpause")
	pclk.Advance(40 * time.Second)
	submit(t, paused, "pause")
	pclk.Advance(10 * time.Second)
	submit(t, paused, "unpause")
	pclk.Advance(55 * time.Second)
	paused.Tick()

	a, b := plain.Status(), paused.Status()
	if !a.Complete || !b.Complete {
		t.Fatalf("both sessions should be complete: %s %s", a.Phase, b.Phase)
	}
	if row(t, a, "work").Actual != 2*time.Minute || row(t, b, "work").Actual != 2*time.Minute {
		t.Fatalf("work credit differs: plain=%s paused=%s", row(t, a, "work").Actual, row(t, b, "work").Actual)
	}
	if got := row(t, b, domain.Pause); got.Actual != 55*time.Second || got.Count != 2 {
		t.Fatalf("pause ledger should hold only paused time: %+v", got)
	}
	if row(t, a, domain.Pause).Actual != 0 {
		t.Fatalf("uninterrupted run must not accrue pause time")
	}
	if got := row(t, b, "work").Count; got != 1 {
		t.Fatalf("expected work count 1, got %d", got)
	}

	entries := paused.Timeline()
	labels := []domain.TaskName{"work", domain.Pause, "work", domain.Pause, "work"}
	if len(entries) != len(labels) {
		t.Fatalf("expected %d segments, got %d", len(labels), len(entries))
	}
	for i, e := range entries {
		if e.Label != labels[i] {
			t.Fatalf("segment %d: expected %s, got %s", i, labels[i], e.Label)
		}
		if i > 0 && e.Start.Before(entries[i-1].End) {
			t.Fatalf("segments %d and %d overlap", i-1, i)
		}
	}
}

func TestFinishMidBlockCreditsElapsedTimeOnly(t *testing.T) {
	t.Parallel()
	ctrl, clk, cues := newController(t, domain.Block{Task: "work", Length: time.Minute})
	clk.Advance(500 * time.Millisecond)
	submit(t, ctrl, "finish")

	st := ctrl.Status()
	if !st.Complete || st.BlockIndex != -1 || st.Task != "" {
		t.Fatalf("expected completed session with cleared block, got %+v", st)
	}
	if got := row(t, st, "work").Actual; got != 500*time.Millisecond {
		t.Fatalf("expected 500ms credited, got %s", got)
	}
	if got := row(t, st, "work").Count; got != 0 {
		t.Fatalf("finished block must not count as complete, got %d", got)
	}
	entries := ctrl.Timeline()
	if len(entries) != 1 || entries[0].Label != "work" || !entries[0].End.Equal(clk.Now()) {
		t.Fatalf("expected one closed work segment, got %+v", entries)
	}
	if cues.count(domain.CueSessionFinished) != 1 {
		t.Fatalf("expected one session finished cue")
	}
	select {
	case <-ctrl.Done():
	default:
		t.Fatalf("done channel should be closed")
	}
}

func TestFinishUnwindsPauseInsideHassler(t *testing.T) {
	t.Parallel()
	ctrl, clk, _ := newController(t,
		domain.Block{Task: "work", Length: time.Minute, Hassler: true},
		domain.Block{Task: "break", Length: time.Minute},
	)
	if st := ctrl.Status(); !st.Hassler || st.Phase != domain.PhaseHassler {
		t.Fatalf("expected hassler gate first, got %+v", st)
	}
	clk.Advance(5 * time.Second)
	submit(t, ctrl, "pause")
	clk.Advance(3 * time.Second)
	ctrl.Tick()
	if st := ctrl.Status(); !st.Paused || !st.Hassler {
		t.Fatalf("expected pause nested in hassler, got %+v", st)
	}
	clk.Advance(2 * time.Second)
	submit(t, ctrl, "finish")

	st := ctrl.Status()
	if !st.Complete {
		t.Fatalf("finish must complete the session, phase=%s", st.Phase)
	}
	if got := row(t, st, domain.Hassler).Actual; got != 5*time.Second {
		t.Fatalf("expected 5s hassler, got %s", got)
	}
	if got := row(t, st, domain.Pause).Actual; got != 5*time.Second {
		t.Fatalf("expected 5s pause, got %s", got)
	}
	if got := row(t, st, "work").Actual; got != 0 {
		t.Fatalf("countdown never started, got %s", got)
	}
	for _, e := range ctrl.Timeline() {
		if e.End.IsZero() || e.End.Before(e.Start) {
			t.Fatalf("segment left open: %+v", e)
		}
	}
	rec, err := ctrl.Record()
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(rec.Timeline) != 2 || rec.Timeline[0].Label != domain.Hassler || rec.Timeline[1].Label != domain.Pause {
		t.Fatalf("unexpected timeline %+v", rec.Timeline)
	}
}

func TestHasslerWaitsForOkay(t *testing.T) {
	t.Parallel()
	ctrl, clk, cues := newController(t, domain.Block{Task: "work", Length: time.Minute, Hassler: true, Focus: "draft"})
	clk.Advance(4 * time.Second)
	submit(t, ctrl, "next")
	submit(t, ctrl, "whatever")
	if st := ctrl.Status(); st.Phase != domain.PhaseHassler {
		t.Fatalf("next and text must not leave the hassler gate, got %s", st.Phase)
	}
	clk.Advance(2 * time.Second)
	submit(t, ctrl, "OKAY")

	st := ctrl.Status()
	if st.Phase != domain.PhaseRunning || st.Hassler {
		t.Fatalf("okay should start the countdown, got %+v", st)
	}
	if got := row(t, st, domain.Hassler); got.Actual != 6*time.Second || got.Count != 1 {
		t.Fatalf("unexpected hassler tally %+v", got)
	}
	if cues.count(domain.CueBlockStarted) != 1 {
		t.Fatalf("expected block started cue after okay")
	}
	entries := ctrl.Timeline()
	if len(entries) != 2 || entries[0].Label != domain.Hassler || entries[0].Focus != "draft" || entries[1].Label != "work" {
		t.Fatalf("unexpected timeline %+v", entries)
	}
}

func TestHasslerPromptRepeats(t *testing.T) {
	t.Parallel()
	clk := newManualClock()
	cues := &recordingCues{}
	ctrl := service.NewController(service.Config{TickInterval: time.Second, HasslerRepeat: 10 * time.Second}, clk, fakeID{}, cues, logging.Discard())
	if _, err := ctrl.Deploy([]domain.Block{{Task: "work", Length: time.Minute, Hassler: true}}); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if _, err := ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 25; i++ {
		clk.Advance(time.Second)
		ctrl.Tick()
	}
	if got := cues.count(domain.CueHasslerPrompt); got != 3 {
		t.Fatalf("expected initial prompt plus two repeats, got %d", got)
	}
}

func TestDingerFiresOncePerCrossedMultiple(t *testing.T) {
	t.Parallel()
	block := domain.Block{Task: "work", Length: domain.Minutes(0.3), Dinger: domain.ParseDinger(0.1)}

	t.Run("every tick", func(t *testing.T) {
		t.Parallel()
		ctrl, clk, cues := newController(t, block)
		for i := 0; i < 20; i++ {
			clk.Advance(time.Second)
			ctrl.Tick()
		}
		if got := cues.count(domain.CueDing); got != 3 {
			t.Fatalf("expected 3 dings, got %d", got)
		}
	})
	t.Run("skipped ticks", func(t *testing.T) {
		t.Parallel()
		ctrl, clk, cues := newController(t, block)
		clk.Advance(13 * time.Second)
		ctrl.Tick()
		if got := cues.count(domain.CueDing); got != 2 {
			t.Fatalf("expected 2 dings after 13s, got %d", got)
		}
		clk.Advance(time.Minute)
		ctrl.Tick()
		if got := cues.count(domain.CueDing); got != 3 {
			t.Fatalf("expected 3 dings in total, got %d", got)
		}
	})
}

func TestNextCreditsTimeWithoutCountingCompletion(t *testing.T) {
	t.Parallel()
	ctrl, clk, cues := newController(t,
		domain.Block{Task: "work", Length: 10 * time.Minute, Applause: true},
		domain.Block{Task: "break", Length: 5 * time.Minute},
	)
	clk.Advance(90 * time.Second)
	submit(t, ctrl, "next")

	st := ctrl.Status()
	if st.BlockIndex != 1 || st.Task != "break" {
		t.Fatalf("expected to advance to break, got %+v", st)
	}
	if got := row(t, st, "work"); got.Actual != 90*time.Second || got.Count != 0 {
		t.Fatalf("next must credit time without count: %+v", got)
	}
	if cues.count(domain.CueApplause) != 0 || cues.count(domain.CueNext) != 1 {
		t.Fatalf("next must not applaud")
	}
}

func TestBlocksCompleteAtTheirExactInstant(t *testing.T) {
	t.Parallel()
	ctrl, clk, cues := newController(t,
		domain.Block{Task: "work", Length: time.Minute, Applause: true},
		domain.Block{Task: "break", Length: time.Minute},
	)
	start := clk.Now()
	clk.Advance(90 * time.Second)
	ctrl.Tick()

	st := ctrl.Status()
	if got := row(t, st, "work"); got.Actual != time.Minute || got.Count != 1 {
		t.Fatalf("work should be credited exactly its length: %+v", got)
	}
	if got := row(t, st, "break").Actual; got != 30*time.Second {
		t.Fatalf("overshoot belongs to the next block, got %s", got)
	}
	if st.Elapsed != 30*time.Second || st.Remaining != 30*time.Second {
		t.Fatalf("unexpected elapsed/remaining %s/%s", st.Elapsed, st.Remaining)
	}
	entries := ctrl.Timeline()
	if !entries[0].End.Equal(start.Add(time.Minute)) || !entries[1].Start.Equal(start.Add(time.Minute)) {
		t.Fatalf("segment boundary should sit at completion instant: %+v", entries)
	}
	if cues.count(domain.CueApplause) != 1 {
		t.Fatalf("expected one applause cue")
	}

	clk.Advance(10 * time.Minute)
	ctrl.Tick()
	if st := ctrl.Status(); !st.Complete || row(t, st, domain.Total).Actual != 2*time.Minute {
		t.Fatalf("expected completion with 2m total, got %+v", st)
	}
}

func TestStatusIsIdempotentBetweenTicks(t *testing.T) {
	t.Parallel()
	ctrl, clk, _ := newController(t, domain.Block{Task: "work", Length: time.Minute})
	clk.Advance(10 * time.Second)
	ctrl.Tick()
	first := ctrl.Status()
	clk.Advance(20 * time.Second)
	second := ctrl.Status()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("status changed without a tick:\n%+v\n%+v", first, second)
	}
}

func TestLedgerNeverDecreases(t *testing.T) {
	t.Parallel()
	ctrl, clk, _ := newController(t,
		domain.Block{Task: "work", Length: 30 * time.Second, Hassler: true},
		domain.Block{Task: "break", Length: 20 * time.Second},
	)
	script := map[int]string{2: "pause", 5: "unpause", 7: "okay", 12: "pause", 15: "unpause"}
	prev := map[domain.TaskName]time.Duration{}
	for i := 0; i < 80; i++ {
		clk.Advance(time.Second)
		if token, ok := script[i]; ok {
			submit(t, ctrl, token)
		} else {
			ctrl.Tick()
		}
		for _, r := range ctrl.Status().Rows {
			if r.Actual < prev[r.Task] {
				t.Fatalf("tick %d: %s went from %s to %s", i, r.Task, prev[r.Task], r.Actual)
			}
			prev[r.Task] = r.Actual
		}
	}
	st := ctrl.Status()
	if !st.Complete {
		t.Fatalf("expected completion, got %s", st.Phase)
	}
	if row(t, st, "work").Actual != 30*time.Second || row(t, st, "break").Actual != 20*time.Second {
		t.Fatalf("task time not exact: %+v", st.Rows)
	}
}

func TestProgressRowsFollowFixedOrder(t *testing.T) {
	t.Parallel()
	ctrl, _, _ := newController(t,
		domain.Block{Task: "Work", Length: 10 * time.Minute},
		domain.Block{Task: "break", Length: 5 * time.Minute},
		domain.Block{Task: "work", Length: 15 * time.Minute},
	)
	st := ctrl.Status()
	want := []domain.TaskName{"work", "break", domain.Pause, domain.Hassler, domain.Total, domain.TotalActive}
	for i, task := range want {
		if st.Rows[i].Task != task {
			t.Fatalf("row %d: expected %s, got %s", i, task, st.Rows[i].Task)
		}
	}
	if st.Rows[0].Goal != 25*time.Minute || st.Rows[0].GoalText != "25:00" {
		t.Fatalf("unexpected work goal %+v", st.Rows[0])
	}
	if len(st.Chart) != 4 || st.Chart[3].Task != domain.Hassler || st.Chart[0].GoalMinutes != 25 {
		t.Fatalf("unexpected chart %+v", st.Chart)
	}
}

func TestLifecycleGuards(t *testing.T) {
	t.Parallel()
	clk := newManualClock()
	ctrl := service.NewController(service.Config{}, clk, fakeID{}, nil, logging.Discard())
	if _, err := ctrl.Start(); !errors.Is(err, apperrors.ErrNoSchedule) {
		t.Fatalf("expected no schedule error, got %v", err)
	}
	if err := ctrl.Submit(domain.Command{Kind: domain.CommandPause}); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session error, got %v", err)
	}
	if _, err := ctrl.Record(); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected record without session to fail, got %v", err)
	}
	if _, err := ctrl.Deploy([]domain.Block{{Task: "work", Length: time.Minute}}); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if _, err := ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := ctrl.Start(); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("second start must be rejected, got %v", err)
	}
	if _, err := ctrl.Deploy([]domain.Block{{Task: "break", Length: time.Minute}}); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("deploy during session must be rejected, got %v", err)
	}
	if err := ctrl.Submit(domain.Command{Kind: domain.CommandPause}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := ctrl.Submit(domain.Command{Kind: domain.CommandNext}); !errors.Is(err, apperrors.ErrCommandPending) {
		t.Fatalf("occupied slot must reject, got %v", err)
	}
	if err := ctrl.Submit(domain.Command{Kind: domain.CommandFinish}); err != nil {
		t.Fatalf("finish must replace pending command: %v", err)
	}
	ctrl.Tick()
	if st := ctrl.Status(); !st.Complete {
		t.Fatalf("finish should have been consumed, phase=%s", st.Phase)
	}
}

func TestRunWorkerObservesFinishWithinATick(t *testing.T) {
	t.Parallel()
	ctrl := service.NewController(service.Config{TickInterval: time.Hour}, realClock{}, fakeID{}, nil, logging.Discard())
	if _, err := ctrl.Deploy([]domain.Block{{Task: "work", Length: time.Hour}}); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if _, err := ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- ctrl.Run(context.Background()) }()

	if err := ctrl.Submit(domain.Command{Kind: domain.CommandFinish}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case <-ctrl.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("finish not observed while worker waits on a one hour tick")
	}
	if err := <-errCh; err != nil {
		t.Fatalf("run returned %v", err)
	}
}

func TestRunWorkerFinishesOnCancel(t *testing.T) {
	t.Parallel()
	ctrl := service.NewController(service.Config{TickInterval: 10 * time.Millisecond}, realClock{}, fakeID{}, nil, logging.Discard())
	if _, err := ctrl.Deploy([]domain.Block{{Task: "work", Length: time.Hour}}); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if _, err := ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ctrl.Run(ctx) }()
	time.Sleep(30 * time.Millisecond)
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if st := ctrl.Status(); !st.Complete || row(t, st, "work").Actual <= 0 {
		t.Fatalf("cancel should finish and keep credited time, got %+v", st)
	}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type gatedCues struct {
	finished chan struct{}
	release  chan struct{}
}

func (g gatedCues) Play(cue domain.Cue) {
	if cue.Kind != domain.CueSessionFinished {
		return
	}
	g.finished <- struct{}{}
	<-g.release
}

func TestRunWorkerExitsWhenANewSessionStartsDuringFinishCue(t *testing.T) {
	t.Parallel()
	cues := gatedCues{finished: make(chan struct{}, 2), release: make(chan struct{})}
	ctrl := service.NewController(service.Config{TickInterval: 5 * time.Millisecond}, realClock{}, fakeID{}, cues, logging.Discard())
	if _, err := ctrl.Deploy([]domain.Block{{Task: "work", Length: time.Hour}}); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if _, err := ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	first := make(chan error, 1)
	go func() { first <- ctrl.Run(context.Background()) }()

	if err := ctrl.Submit(domain.Command{Kind: domain.CommandFinish}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-cues.finished
	if _, err := ctrl.Start(); err != nil {
		t.Fatalf("restart while the old worker dispatches: %v", err)
	}
	close(cues.release)

	select {
	case err := <-first:
		if err != nil {
			t.Fatalf("old worker returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("old worker kept running beside the new session")
	}
	if st := ctrl.Status(); st.Phase != domain.PhaseRunning {
		t.Fatalf("new session should be untouched by the old worker, phase=%s", st.Phase)
	}

	second := make(chan error, 1)
	go func() { second <- ctrl.Run(context.Background()) }()
	if err := ctrl.Submit(domain.Command{Kind: domain.CommandFinish}); err != nil {
		t.Fatalf("submit to new session: %v", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("new worker returned %v", err)
	}
}
