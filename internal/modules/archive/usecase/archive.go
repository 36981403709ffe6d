package usecase

import (
	"context"
	"fmt"

	"prodman/internal/modules/archive/domain"
	archivedto "prodman/internal/modules/archive/dto"
	archivein "prodman/internal/modules/archive/port/in"
	"prodman/internal/modules/archive/service"
	apperrors "prodman/internal/platform/errors"
)

type Interactor struct {
	svc *service.ArchiveService
}

func NewInteractor(svc *service.ArchiveService) archivein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) SaveTemplate(ctx context.Context, input archivedto.SaveTemplateInput) (archivedto.SaveTemplateOutput, error) {
	result, err := i.svc.SaveTemplate(ctx, domain.Template{ID: input.ID, Blocks: toBlocks(input.Blocks)})
	if err != nil {
		return archivedto.SaveTemplateOutput{}, err
	}
	return archivedto.SaveTemplateOutput{ID: input.ID, Result: string(result)}, nil
}

func (i *Interactor) ListTemplates(ctx context.Context) ([]archivedto.TemplateOutput, error) {
	items, err := i.svc.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]archivedto.TemplateOutput, 0, len(items))
	for _, t := range items {
		out = append(out, archivedto.TemplateOutput{ID: t.ID, Blocks: fromBlocks(t.Blocks)})
	}
	return out, nil
}

func (i *Interactor) GetTemplate(ctx context.Context, id string) (archivedto.TemplateOutput, error) {
	t, err := i.svc.GetTemplate(ctx, id)
	if err != nil {
		return archivedto.TemplateOutput{}, err
	}
	return archivedto.TemplateOutput{ID: t.ID, Blocks: fromBlocks(t.Blocks)}, nil
}

func (i *Interactor) DeleteTemplate(ctx context.Context, id string) error {
	return i.svc.DeleteTemplate(ctx, id)
}

func (i *Interactor) RecordSession(ctx context.Context, input archivedto.RecordSessionInput) (archivedto.HistoryKey, error) {
	if len(input.Schedule) == 0 {
		return archivedto.HistoryKey{}, fmt.Errorf("recorded session has no schedule: %w", apperrors.ErrInvalidInput)
	}
	segments := make([]domain.Segment, 0, len(input.Timeline))
	for _, s := range input.Timeline {
		segments = append(segments, domain.Segment(s))
	}
	key, err := i.svc.Record(ctx, input.StartedAt, input.Name, input.RunID, segments, toBlocks(input.Schedule))
	if err != nil {
		return archivedto.HistoryKey{}, err
	}
	return archivedto.HistoryKey(key), nil
}

func (i *Interactor) QueryHistory(ctx context.Context, query archivedto.HistoryQuery) ([]archivedto.HistoryOutput, error) {
	entries, err := i.svc.Query(ctx, query.From, query.To)
	if err != nil {
		return nil, err
	}
	out := make([]archivedto.HistoryOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, toHistoryOutput(e))
	}
	return out, nil
}

func (i *Interactor) GetHistory(ctx context.Context, key archivedto.HistoryKey) (archivedto.HistoryOutput, error) {
	entry, err := i.svc.Get(ctx, domain.HistoryKey(key))
	if err != nil {
		return archivedto.HistoryOutput{}, err
	}
	return toHistoryOutput(entry), nil
}

func (i *Interactor) DeleteHistory(ctx context.Context, keys []archivedto.HistoryKey) (int, error) {
	converted := make([]domain.HistoryKey, 0, len(keys))
	for _, k := range keys {
		converted = append(converted, domain.HistoryKey(k))
	}
	return i.svc.Delete(ctx, converted)
}

func (i *Interactor) SummarizeHistory(ctx context.Context, key archivedto.HistoryKey) (archivedto.SummaryOutput, error) {
	entry, summary, err := i.svc.Summarize(ctx, domain.HistoryKey(key))
	if err != nil {
		return archivedto.SummaryOutput{}, err
	}
	out := archivedto.SummaryOutput{Key: key, Name: entry.Name}
	for _, t := range summary.Tasks {
		out.Tasks = append(out.Tasks, archivedto.TaskSummaryOutput{
			Task:          t.Task,
			ActualMinutes: t.ActualMinutes,
			GoalMinutes:   t.GoalMinutes,
			Text:          t.Text,
		})
	}
	for _, f := range summary.Focus {
		out.Focus = append(out.Focus, archivedto.FocusSummaryOutput(f))
	}
	return out, nil
}

func (i *Interactor) ExportHistory(ctx context.Context, input archivedto.ExportInput) (archivedto.ExportOutput, error) {
	path, err := i.svc.Export(ctx, domain.HistoryKey(input.Key), input.Dir)
	if err != nil {
		return archivedto.ExportOutput{}, err
	}
	return archivedto.ExportOutput{Key: input.Key, Path: path}, nil
}

func toBlocks(in []archivedto.Block) []domain.Block {
	out := make([]domain.Block, 0, len(in))
	for _, b := range in {
		out = append(out, domain.Block(b))
	}
	return out
}

func fromBlocks(in []domain.Block) []archivedto.Block {
	out := make([]archivedto.Block, 0, len(in))
	for _, b := range in {
		out = append(out, archivedto.Block(b))
	}
	return out
}

func toHistoryOutput(e domain.HistoryEntry) archivedto.HistoryOutput {
	segments := make([]archivedto.Segment, 0, len(e.Timeline))
	for _, s := range e.Timeline {
		segments = append(segments, archivedto.Segment(s))
	}
	return archivedto.HistoryOutput{
		Key:        archivedto.HistoryKey(e.Key),
		Name:       e.Name,
		RunID:      e.RunID,
		RecordedAt: e.RecordedAt,
		Timeline:   segments,
		Schedule:   fromBlocks(e.Schedule),
	}
}
