package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	archivedto "prodman/internal/modules/archive/dto"
	archivein "prodman/internal/modules/archive/port/in"
	"prodman/internal/modules/tracker/domain"
	trackerdto "prodman/internal/modules/tracker/dto"
	trackerin "prodman/internal/modules/tracker/port/in"
	"prodman/internal/modules/tracker/service"
	apperrors "prodman/internal/platform/errors"
)

var _ trackerin.Usecase = (*Interactor)(nil)

// Interactor runs at most one session worker at a time on its controller.
// Workers outlive the request that started them; Close finishes any
// running session and waits for its worker.
type Interactor struct {
	ctrl    *service.Controller
	archive archivein.Usecase
	logger  hclog.Logger

	base    context.Context
	stop    context.CancelFunc
	mu      sync.Mutex
	workers sync.WaitGroup
}

func NewInteractor(ctrl *service.Controller, archive archivein.Usecase, logger hclog.Logger) *Interactor {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	base, stop := context.WithCancel(context.Background())
	return &Interactor{ctrl: ctrl, archive: archive, logger: logger, base: base, stop: stop}
}

func (i *Interactor) Deploy(_ context.Context, input trackerdto.DeployInput) (trackerdto.ScheduleOutput, error) {
	blocks := toDomainBlocks(input.Blocks)
	if input.SkipIncomplete {
		blocks = domain.DropIncomplete(blocks)
	}
	if _, err := i.ctrl.Deploy(blocks); err != nil {
		if errors.Is(err, domain.ErrInvalidSchedule) {
			return trackerdto.ScheduleOutput{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
		}
		return trackerdto.ScheduleOutput{}, err
	}
	return i.Schedule(context.Background())
}

func (i *Interactor) DeployTemplate(ctx context.Context, templateID string) (trackerdto.ScheduleOutput, error) {
	if i.archive == nil {
		return trackerdto.ScheduleOutput{}, fmt.Errorf("archive usecase is not configured")
	}
	tpl, err := i.archive.GetTemplate(ctx, templateID)
	if err != nil {
		return trackerdto.ScheduleOutput{}, err
	}
	blocks := make([]trackerdto.Block, 0, len(tpl.Blocks))
	for _, b := range tpl.Blocks {
		blocks = append(blocks, trackerdto.Block{
			Task: b.Task, Length: b.Length, Focus: b.Focus, Notes: b.Notes,
			Hassler: b.Hassler, Applause: b.Applause, Dinger: b.Dinger,
		})
	}
	out, err := i.Deploy(ctx, trackerdto.DeployInput{Blocks: blocks})
	if err != nil {
		return trackerdto.ScheduleOutput{}, err
	}
	i.logger.Info("template deployed", "template", templateID)
	return out, nil
}

func (i *Interactor) Schedule(_ context.Context) (trackerdto.ScheduleOutput, error) {
	schedule, goals := i.ctrl.Schedule()
	out := trackerdto.ScheduleOutput{Blocks: fromDomainBlocks(schedule.Blocks)}
	for _, t := range schedule.Tasks {
		out.Tasks = append(out.Tasks, t.String())
	}
	for _, t := range append(append([]domain.TaskName{}, schedule.Tasks...), domain.Total) {
		out.Goals = append(out.Goals, trackerdto.GoalOutput{
			Task:    t.String(),
			Minutes: domain.ToMinutes(goals[t]),
			Text:    domain.FormatCompact(goals[t]),
		})
	}
	return out, nil
}

// Start opens a session and spawns its worker.
func (i *Interactor) Start(_ context.Context) (trackerdto.StartOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.base.Err() != nil {
		return trackerdto.StartOutput{}, fmt.Errorf("tracker is shut down")
	}
	runID, err := i.ctrl.Start()
	if err != nil {
		return trackerdto.StartOutput{}, err
	}
	i.workers.Add(1)
	go func() {
		defer i.workers.Done()
		if err := i.ctrl.Run(i.base); err != nil && !errors.Is(err, context.Canceled) {
			i.logger.Error("session worker stopped", "run_id", runID, "error", err)
		}
	}()
	return trackerdto.StartOutput{RunID: runID, StartedAt: i.ctrl.Status().StartedAt}, nil
}

func (i *Interactor) Submit(_ context.Context, token string) error {
	return i.ctrl.Submit(domain.ParseCommand(token))
}

func (i *Interactor) Progress(_ context.Context) (trackerdto.ProgressOutput, error) {
	st := i.ctrl.Status()
	out := trackerdto.ProgressOutput{
		RunID:      st.RunID,
		Phase:      string(st.Phase),
		StartedAt:  st.StartedAt,
		AsOf:       st.AsOf,
		BlockIndex: st.BlockIndex,
		BlockCount: st.BlockCount,
		Task:       st.Task.String(),
		Focus:      st.Focus,
		Notes:      st.Notes,
		Elapsed:    domain.FormatClock(st.Elapsed),
		Remaining:  domain.FormatClock(st.Remaining),
		Length:     domain.FormatClock(st.Length),
		Block:      domain.FormatCompact(st.Elapsed) + " / " + domain.FormatCompact(st.Length),
		Paused:     st.Paused,
		Hassler:    st.Hassler,
		Complete:   st.Complete,
	}
	for _, r := range st.Rows {
		out.Rows = append(out.Rows, trackerdto.ProgressRow{
			Task:          r.Task.String(),
			GoalMinutes:   domain.ToMinutes(r.Goal),
			ActualMinutes: domain.ToMinutes(r.Actual),
			Count:         r.Count,
			Goal:          r.GoalText,
			Actual:        r.ActualText,
		})
	}
	for _, p := range st.Chart {
		out.Chart = append(out.Chart, trackerdto.ChartPoint{Task: p.Task.String(), GoalMinutes: p.GoalMinutes, ActualMinutes: p.ActualMinutes})
	}
	return out, nil
}

func (i *Interactor) Timeline(_ context.Context) ([]trackerdto.SegmentOutput, error) {
	entries := i.ctrl.Timeline()
	out := make([]trackerdto.SegmentOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, trackerdto.SegmentOutput{
			Task: e.Label.String(), Focus: e.Focus, Notes: e.Notes,
			Start: e.Start, End: e.End, Length: e.LengthMinutes,
		})
	}
	return out, nil
}

func (i *Interactor) Wait(ctx context.Context) error {
	select {
	case <-i.ctrl.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Record hands the current or last session to the archive.
func (i *Interactor) Record(ctx context.Context, input trackerdto.RecordInput) (trackerdto.RecordOutput, error) {
	if i.archive == nil {
		return trackerdto.RecordOutput{}, fmt.Errorf("archive usecase is not configured")
	}
	rec, err := i.ctrl.Record()
	if err != nil {
		return trackerdto.RecordOutput{}, err
	}
	if !rec.Complete {
		i.logger.Warn("recording a session that is still running", "run_id", rec.RunID)
	}
	segments := make([]archivedto.Segment, 0, len(rec.Timeline))
	for _, e := range rec.Timeline {
		segments = append(segments, archivedto.Segment{
			Task: e.Label.String(), Focus: e.Focus, Notes: e.Notes,
			Start: e.Start, End: e.End, Length: e.LengthMinutes,
		})
	}
	schedule := make([]archivedto.Block, 0, len(rec.Blocks))
	for _, b := range rec.Blocks {
		schedule = append(schedule, archivedto.Block{
			Task: b.Task.String(), Length: domain.ToMinutes(b.Length), Focus: b.Focus, Notes: b.Notes,
			Hassler: b.Hassler, Applause: b.Applause, Dinger: domain.ToMinutes(b.Dinger),
		})
	}
	key, err := i.archive.RecordSession(ctx, archivedto.RecordSessionInput{
		StartedAt: rec.StartedAt,
		Name:      input.Name,
		RunID:     rec.RunID,
		Timeline:  segments,
		Schedule:  schedule,
	})
	if err != nil {
		return trackerdto.RecordOutput{}, err
	}
	return trackerdto.RecordOutput{Date: key.Date, ID: key.ID}, nil
}

// Close finishes a running session and waits for its worker to exit.
func (i *Interactor) Close() error {
	i.mu.Lock()
	i.stop()
	i.mu.Unlock()
	i.workers.Wait()
	return nil
}

func toDomainBlocks(in []trackerdto.Block) []domain.Block {
	out := make([]domain.Block, 0, len(in))
	for _, b := range in {
		out = append(out, domain.Block{
			Task:     domain.TaskName(b.Task),
			Length:   domain.Minutes(b.Length),
			Focus:    b.Focus,
			Notes:    b.Notes,
			Hassler:  b.Hassler,
			Applause: b.Applause,
			Dinger:   domain.ParseDinger(b.Dinger),
		})
	}
	return out
}

func fromDomainBlocks(in []domain.Block) []trackerdto.Block {
	out := make([]trackerdto.Block, 0, len(in))
	for _, b := range in {
		block := trackerdto.Block{
			Task: b.Task.String(), Length: domain.ToMinutes(b.Length), Focus: b.Focus, Notes: b.Notes,
			Hassler: b.Hassler, Applause: b.Applause,
		}
		if b.Dinger > 0 {
			block.Dinger = domain.ToMinutes(b.Dinger)
		}
		out = append(out, block)
	}
	return out
}
