package out

import (
	"context"

	"prodman/internal/modules/archive/domain"
)

type TemplateStore interface {
	// SaveTemplate upserts t and reports whether an existing template was replaced.
	SaveTemplate(ctx context.Context, t domain.Template) (bool, error)
	ListTemplates(ctx context.Context) ([]domain.Template, error)
	GetTemplate(ctx context.Context, id string) (domain.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}

type HistoryStore interface {
	// InsertNext allocates the next id for entry.Key.Date and stores the entry
	// atomically, returning the stored key.
	InsertNext(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryKey, error)
	Query(ctx context.Context, from, to string) ([]domain.HistoryEntry, error)
	Get(ctx context.Context, key domain.HistoryKey) (domain.HistoryEntry, error)
	Delete(ctx context.Context, keys []domain.HistoryKey) (int, error)
}

type HistoryExporter interface {
	Export(ctx context.Context, entry domain.HistoryEntry, summary domain.Summary, dir string) (string, error)
}
