package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"prodman/internal/modules/tracker/domain"
	trackerout "prodman/internal/modules/tracker/port/out"
	"prodman/internal/platform/clock"
	apperrors "prodman/internal/platform/errors"
	"prodman/internal/platform/id"
)

type Config struct {
	// TickInterval is the longest the worker waits between evaluations.
	TickInterval time.Duration
	// HasslerRepeat re-raises the hassler prompt while waiting; zero disables it.
	HasslerRepeat time.Duration
}

func (c Config) normalized() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.HasslerRepeat < 0 {
		c.HasslerRepeat = 0
	}
	return c
}

// Controller owns one schedule and drives sessions over it. All state is
// guarded by mu; methods suffixed Locked expect the caller to hold it.
type Controller struct {
	mu      sync.Mutex
	cfg     Config
	clock   clock.Clock
	ids     id.Generator
	cues    trackerout.CuePlayer
	logger  hclog.Logger
	mailbox *Mailbox

	schedule domain.Schedule
	goals    domain.Goals
	ledger   *domain.Ledger
	timeline *domain.Timeline

	phase  domain.Phase
	resume domain.Phase
	index  int
	block  domain.Block

	phaseAt  time.Time
	markAt   time.Time
	carried  time.Duration
	nextDing time.Duration
	promptAt time.Time

	runID     string
	runBlocks []domain.Block
	startedAt time.Time
	asOf      time.Time
	done      chan struct{}
}

func NewController(cfg Config, clk clock.Clock, ids id.Generator, cues trackerout.CuePlayer, logger hclog.Logger) *Controller {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	done := make(chan struct{})
	close(done)
	return &Controller{
		cfg:      cfg.normalized(),
		clock:    clk,
		ids:      ids,
		cues:     cues,
		logger:   logger,
		mailbox:  NewMailbox(logger.Named("mailbox")),
		goals:    domain.Goals{},
		ledger:   domain.NewLedger(nil),
		timeline: &domain.Timeline{},
		phase:    domain.PhaseIdle,
		index:    -1,
		done:     done,
	}
}

// Deploy installs a new schedule and zeroes the ledger.
func (c *Controller) Deploy(blocks []domain.Block) (domain.Schedule, error) {
	schedule, err := domain.NormalizeBlocks(blocks)
	if err != nil {
		return domain.Schedule{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase.Active() {
		return domain.Schedule{}, fmt.Errorf("deploy schedule: %w", apperrors.ErrActiveSessionExists)
	}
	c.schedule = schedule
	c.goals = schedule.Goals()
	c.ledger.Reset(schedule.Tasks)
	c.logger.Info("schedule deployed", "blocks", len(schedule.Blocks), "tasks", len(schedule.Tasks))
	return schedule, nil
}

func (c *Controller) Schedule() (domain.Schedule, domain.Goals) {
	c.mu.Lock()
	defer c.mu.Unlock()
	goals := make(domain.Goals, len(c.goals))
	for k, v := range c.goals {
		goals[k] = v
	}
	return domain.Schedule{
		Blocks: append([]domain.Block(nil), c.schedule.Blocks...),
		Tasks:  append([]domain.TaskName(nil), c.schedule.Tasks...),
	}, goals
}

// Start opens a new session on the deployed schedule. It does not spawn the
// worker; callers run Run or drive Tick themselves.
func (c *Controller) Start() (string, error) {
	var cues []domain.Cue
	c.mu.Lock()
	if c.phase.Active() {
		runID := c.runID
		c.mu.Unlock()
		c.logger.Warn("start rejected, session already active", "run_id", runID)
		return "", apperrors.ErrActiveSessionExists
	}
	if c.schedule.Empty() {
		c.mu.Unlock()
		return "", apperrors.ErrNoSchedule
	}
	now := c.clock.Now()
	c.mailbox.Clear()
	c.timeline = &domain.Timeline{}
	c.runID = c.ids.New()
	c.runBlocks = append([]domain.Block(nil), c.schedule.Blocks...)
	c.startedAt = now
	c.asOf = now
	c.done = make(chan struct{})
	c.logger.Info("session started", "run_id", c.runID, "blocks", len(c.schedule.Blocks))
	c.enterBlockLocked(0, now, &cues)
	runID := c.runID
	c.mu.Unlock()

	c.dispatch(cues)
	return runID, nil
}

// Submit queues cmd for the worker. Only an active session accepts commands.
func (c *Controller) Submit(cmd domain.Command) error {
	c.mu.Lock()
	active := c.phase.Active()
	c.mu.Unlock()
	if !active {
		return apperrors.ErrNoActiveSession
	}
	return c.mailbox.Post(cmd)
}

// Tick performs one evaluation at the current clock reading, consuming the
// pending command if there is one.
func (c *Controller) Tick() {
	cmd, ok := c.mailbox.Take()
	c.step(c.clock.Now(), cmd, ok)
}

// Run is the session worker. It serves the session current when it is
// called, evaluating once per tick interval or sooner when a command
// arrives, and returns once that session completes even if another has
// started since. Cancelling ctx finishes the session.
func (c *Controller) Run(ctx context.Context) error {
	done := c.Done()
	for {
		cmd, ok := c.mailbox.Wait(ctx, c.cfg.TickInterval)
		if ended(done) {
			if ok {
				_ = c.mailbox.Post(cmd)
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			c.step(c.clock.Now(), domain.Command{Kind: domain.CommandFinish}, true)
			return err
		}
		c.step(c.clock.Now(), cmd, ok)
		if ended(done) {
			return nil
		}
	}
}

func ended(done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}

// Done is closed when the current session completes.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *Controller) step(now time.Time, cmd domain.Command, hasCmd bool) {
	var cues []domain.Cue
	c.mu.Lock()
	if now.Before(c.asOf) {
		now = c.asOf
	}
	if c.phase.Active() {
		c.advanceLocked(now, &cues)
		if hasCmd && c.phase.Active() {
			c.applyLocked(now, cmd, &cues)
		} else if hasCmd {
			c.logger.Debug("command arrived after completion", "command", cmd.String())
		}
		c.asOf = now
	} else if hasCmd {
		c.logger.Debug("command ignored, no active session", "command", cmd.String())
	}
	c.mu.Unlock()
	c.dispatch(cues)
}

// advanceLocked credits time up to now and completes every block whose
// length has been reached, each at its exact completion instant.
func (c *Controller) advanceLocked(now time.Time, cues *[]domain.Cue) {
	for {
		switch c.phase {
		case domain.PhaseRunning:
			end := c.phaseAt.Add(c.block.Length - c.carried)
			mark := now
			if !now.Before(end) {
				mark = end
			}
			c.creditLocked(c.block.Task, mark)
			c.ringLocked(c.carried+mark.Sub(c.phaseAt), mark, cues)
			if now.Before(end) {
				return
			}
			c.ledger.IncrementCount(c.block.Task)
			if c.block.Applause {
				c.cueLocked(domain.CueApplause, end, cues)
			}
			c.closeSegmentLocked(end)
			c.enterBlockLocked(c.index+1, end, cues)
		case domain.PhaseHassler:
			c.creditLocked(domain.Hassler, now)
			if c.cfg.HasslerRepeat > 0 && now.Sub(c.promptAt) >= c.cfg.HasslerRepeat {
				c.promptAt = now
				c.cueLocked(domain.CueHasslerPrompt, now, cues)
			}
			return
		case domain.PhasePaused:
			c.creditLocked(domain.Pause, now)
			return
		default:
			return
		}
	}
}

func (c *Controller) applyLocked(now time.Time, cmd domain.Command, cues *[]domain.Cue) {
	switch cmd.Kind {
	case domain.CommandFinish:
		c.logger.Info("session finished by user", "run_id", c.runID, "phase", string(c.phase))
		c.completeLocked(now, cues)
	case domain.CommandPause:
		if c.phase != domain.PhaseRunning && c.phase != domain.PhaseHassler {
			c.logger.Debug("pause ignored", "phase", string(c.phase))
			return
		}
		if c.phase == domain.PhaseRunning {
			c.carried += now.Sub(c.phaseAt)
		}
		c.closeSegmentLocked(now)
		c.resume = c.phase
		c.phase = domain.PhasePaused
		c.phaseAt = now
		c.markAt = now
		c.openSegmentLocked(now, domain.Pause)
		c.cueLocked(domain.CuePaused, now, cues)
	case domain.CommandUnpause:
		if c.phase != domain.PhasePaused {
			c.logger.Debug("unpause ignored", "phase", string(c.phase))
			return
		}
		c.closeSegmentLocked(now)
		c.ledger.IncrementCount(domain.Pause)
		c.phase = c.resume
		c.phaseAt = now
		c.markAt = now
		if c.phase == domain.PhaseHassler {
			c.promptAt = now
			c.openSegmentLocked(now, domain.Hassler)
			c.cueLocked(domain.CueHasslerPrompt, now, cues)
			return
		}
		c.openSegmentLocked(now, c.block.Task)
		c.cueLocked(domain.CueResumed, now, cues)
	case domain.CommandNext:
		if c.phase != domain.PhaseRunning {
			c.logger.Debug("next ignored", "phase", string(c.phase))
			return
		}
		c.closeSegmentLocked(now)
		c.cueLocked(domain.CueNext, now, cues)
		c.enterBlockLocked(c.index+1, now, cues)
	case domain.CommandOkay:
		if c.phase != domain.PhaseHassler {
			c.logger.Debug("okay ignored", "phase", string(c.phase))
			return
		}
		c.closeSegmentLocked(now)
		c.ledger.IncrementCount(domain.Hassler)
		c.beginCountdownLocked(now, cues)
	default:
		c.logger.Debug("text ignored", "text", cmd.Text, "phase", string(c.phase))
	}
}

func (c *Controller) enterBlockLocked(i int, at time.Time, cues *[]domain.Cue) {
	if i >= len(c.schedule.Blocks) {
		c.completeLocked(at, cues)
		return
	}
	c.index = i
	c.block = c.schedule.Blocks[i]
	c.carried = 0
	c.nextDing = c.block.Dinger
	if !c.block.Hassler {
		c.beginCountdownLocked(at, cues)
		return
	}
	c.phase = domain.PhaseHassler
	c.phaseAt = at
	c.markAt = at
	c.promptAt = at
	c.openSegmentLocked(at, domain.Hassler)
	c.cueLocked(domain.CueHasslerPrompt, at, cues)
}

func (c *Controller) beginCountdownLocked(at time.Time, cues *[]domain.Cue) {
	c.phase = domain.PhaseRunning
	c.phaseAt = at
	c.markAt = at
	c.openSegmentLocked(at, c.block.Task)
	c.cueLocked(domain.CueBlockStarted, at, cues)
}

func (c *Controller) completeLocked(at time.Time, cues *[]domain.Cue) {
	if c.timeline.HasOpen() {
		c.closeSegmentLocked(at)
	}
	c.phase = domain.PhaseComplete
	c.resume = ""
	c.cueLocked(domain.CueSessionFinished, at, cues)
	c.index = -1
	c.block = domain.Block{}
	c.carried = 0
	c.asOf = at
	close(c.done)
	c.logger.Info("session complete", "run_id", c.runID, "segments", c.timeline.Len())
}

func (c *Controller) creditLocked(task domain.TaskName, mark time.Time) {
	if !mark.After(c.markAt) {
		return
	}
	c.ledger.Add(task, mark.Sub(c.markAt))
	c.markAt = mark
}

// ringLocked fires one ding per crossed multiple of the dinger interval.
// Progress is capped at the block length.
func (c *Controller) ringLocked(elapsed time.Duration, at time.Time, cues *[]domain.Cue) {
	if c.block.Dinger <= 0 {
		return
	}
	progress := min(elapsed, c.block.Length)
	for c.nextDing <= progress {
		c.cueLocked(domain.CueDing, at, cues)
		c.nextDing += c.block.Dinger
	}
}

func (c *Controller) openSegmentLocked(at time.Time, label domain.TaskName) {
	if err := c.timeline.Open(at, label, c.block.Focus, c.block.Notes); err != nil {
		c.logger.Warn("timeline anomaly", "op", "open", "label", label.String(), "error", err)
	}
}

func (c *Controller) closeSegmentLocked(at time.Time) {
	if err := c.timeline.Close(at); err != nil {
		c.logger.Warn("timeline anomaly", "op", "close", "error", err)
	}
}

func (c *Controller) cueLocked(kind domain.CueKind, at time.Time, cues *[]domain.Cue) {
	*cues = append(*cues, domain.Cue{Kind: kind, Task: c.block.Task, Focus: c.block.Focus, At: at})
}

func (c *Controller) dispatch(cues []domain.Cue) {
	if c.cues == nil {
		return
	}
	for _, cue := range cues {
		c.cues.Play(cue)
	}
}

// Status reports the session as of the last evaluation. Two calls without
// an intervening tick return identical values.
func (c *Controller) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := domain.Status{
		RunID:      c.runID,
		Phase:      c.phase,
		StartedAt:  c.startedAt,
		AsOf:       c.asOf,
		BlockIndex: c.index,
		BlockCount: len(c.schedule.Blocks),
		Task:       c.block.Task,
		Focus:      c.block.Focus,
		Notes:      c.block.Notes,
		Length:     c.block.Length,
		Paused:     c.phase == domain.PhasePaused,
		Hassler:    c.phase == domain.PhaseHassler || (c.phase == domain.PhasePaused && c.resume == domain.PhaseHassler),
		Complete:   c.phase == domain.PhaseComplete,
	}
	switch {
	case c.phase == domain.PhaseRunning:
		st.Elapsed = c.carried + c.asOf.Sub(c.phaseAt)
	case c.phase == domain.PhasePaused && c.resume == domain.PhaseRunning:
		st.Elapsed = c.carried
	}
	if c.phase.Active() {
		st.Remaining = max(c.block.Length-st.Elapsed, 0)
	}
	st.Rows, st.Chart = domain.BuildRows(c.schedule.Tasks, c.goals, c.ledger.Snapshot())
	return st
}

// Timeline materializes the current session's segments at the clock's now.
func (c *Controller) Timeline() []domain.Entry {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeline.Materialize(now)
}

// Record captures what history needs from the current or last session.
func (c *Controller) Record() (domain.SessionRecord, error) {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runID == "" {
		return domain.SessionRecord{}, apperrors.ErrNoActiveSession
	}
	return domain.SessionRecord{
		RunID:     c.runID,
		StartedAt: c.startedAt,
		Complete:  c.phase == domain.PhaseComplete,
		Timeline:  c.timeline.Materialize(now),
		Blocks:    append([]domain.Block(nil), c.runBlocks...),
	}, nil
}
