package in

import (
	"context"

	"prodman/internal/modules/archive/dto"
)

type Usecase interface {
	SaveTemplate(ctx context.Context, input dto.SaveTemplateInput) (dto.SaveTemplateOutput, error)
	ListTemplates(ctx context.Context) ([]dto.TemplateOutput, error)
	GetTemplate(ctx context.Context, id string) (dto.TemplateOutput, error)
	DeleteTemplate(ctx context.Context, id string) error

	RecordSession(ctx context.Context, input dto.RecordSessionInput) (dto.HistoryKey, error)
	QueryHistory(ctx context.Context, query dto.HistoryQuery) ([]dto.HistoryOutput, error)
	GetHistory(ctx context.Context, key dto.HistoryKey) (dto.HistoryOutput, error)
	DeleteHistory(ctx context.Context, keys []dto.HistoryKey) (int, error)
	SummarizeHistory(ctx context.Context, key dto.HistoryKey) (dto.SummaryOutput, error)
	ExportHistory(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
}
