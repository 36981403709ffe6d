package in

import (
	"context"

	archivedto "prodman/internal/modules/archive/dto"
	archivein "prodman/internal/modules/archive/port/in"
)

type CLIHandler struct {
	usecase archivein.Usecase
}

func NewCLIHandler(usecase archivein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) SaveTemplate(ctx context.Context, id string, blocks []archivedto.Block) (archivedto.SaveTemplateOutput, error) {
	return h.usecase.SaveTemplate(ctx, archivedto.SaveTemplateInput{ID: id, Blocks: blocks})
}

func (h CLIHandler) ListTemplates(ctx context.Context) ([]archivedto.TemplateOutput, error) {
	return h.usecase.ListTemplates(ctx)
}

func (h CLIHandler) GetTemplate(ctx context.Context, id string) (archivedto.TemplateOutput, error) {
	return h.usecase.GetTemplate(ctx, id)
}

func (h CLIHandler) DeleteTemplate(ctx context.Context, id string) error {
	return h.usecase.DeleteTemplate(ctx, id)
}

func (h CLIHandler) ListHistory(ctx context.Context, from, to string) ([]archivedto.HistoryOutput, error) {
	return h.usecase.QueryHistory(ctx, archivedto.HistoryQuery{From: from, To: to})
}

func (h CLIHandler) ShowHistory(ctx context.Context, key archivedto.HistoryKey) (archivedto.SummaryOutput, error) {
	return h.usecase.SummarizeHistory(ctx, key)
}

func (h CLIHandler) DeleteHistory(ctx context.Context, keys []archivedto.HistoryKey) (int, error) {
	return h.usecase.DeleteHistory(ctx, keys)
}

func (h CLIHandler) ExportHistory(ctx context.Context, key archivedto.HistoryKey, dir string) (archivedto.ExportOutput, error) {
	return h.usecase.ExportHistory(ctx, archivedto.ExportInput{Key: key, Dir: dir})
}
