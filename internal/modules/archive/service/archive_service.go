package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"prodman/internal/modules/archive/domain"
	archiveout "prodman/internal/modules/archive/port/out"
	"prodman/internal/platform/clock"
	apperrors "prodman/internal/platform/errors"
)

type ArchiveService struct {
	clock     clock.Clock
	templates archiveout.TemplateStore
	history   archiveout.HistoryStore
	exporter  archiveout.HistoryExporter
	logger    hclog.Logger
}

func NewArchiveService(clock clock.Clock, templates archiveout.TemplateStore, history archiveout.HistoryStore, exporter archiveout.HistoryExporter, logger hclog.Logger) *ArchiveService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ArchiveService{clock: clock, templates: templates, history: history, exporter: exporter, logger: logger}
}

// SaveTemplate reports InvalidName with a nil error for a rejected id, so
// callers can surface the outcome the same way as saved and overwritten.
func (s *ArchiveService) SaveTemplate(ctx context.Context, t domain.Template) (domain.SaveResult, error) {
	if err := domain.ValidateTemplateID(t.ID); err != nil {
		s.logger.Warn("template rejected", "id", t.ID, "error", err)
		return domain.InvalidName, nil
	}
	if err := domain.ValidateBlocks(t.Blocks); err != nil {
		return "", err
	}
	replaced, err := s.templates.SaveTemplate(ctx, t)
	if err != nil {
		return "", err
	}
	if replaced {
		s.logger.Info("template overwritten", "id", t.ID)
		return domain.Overwritten, nil
	}
	s.logger.Info("template saved", "id", t.ID, "blocks", len(t.Blocks))
	return domain.Saved, nil
}

func (s *ArchiveService) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	items, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *ArchiveService) GetTemplate(ctx context.Context, id string) (domain.Template, error) {
	return s.templates.GetTemplate(ctx, id)
}

func (s *ArchiveService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.templates.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.logger.Info("template deleted", "id", id)
	return nil
}

// Record stores a session under the date it started on.
func (s *ArchiveService) Record(ctx context.Context, startedAt time.Time, name, runID string, timeline []domain.Segment, schedule []domain.Block) (domain.HistoryKey, error) {
	if startedAt.IsZero() {
		return domain.HistoryKey{}, fmt.Errorf("session start time is required: %w", apperrors.ErrInvalidInput)
	}
	entry := domain.HistoryEntry{
		Key:        domain.HistoryKey{Date: startedAt.Format(domain.DateLayout)},
		Name:       strings.TrimSpace(name),
		RunID:      runID,
		RecordedAt: s.clock.Now(),
		Timeline:   timeline,
		Schedule:   schedule,
	}
	key, err := s.history.InsertNext(ctx, entry)
	if err != nil {
		return domain.HistoryKey{}, err
	}
	s.logger.Info("session recorded", "key", key.String(), "run_id", runID, "segments", len(timeline))
	return key, nil
}

// Query returns sessions whose date lies in [from, to]. Blank bounds are open.
func (s *ArchiveService) Query(ctx context.Context, from, to string) ([]domain.HistoryEntry, error) {
	if from != "" {
		if _, err := domain.ParseDate(from); err != nil {
			return nil, err
		}
	}
	if to != "" {
		if _, err := domain.ParseDate(to); err != nil {
			return nil, err
		}
	}
	if from != "" && to != "" && from > to {
		return nil, fmt.Errorf("range %s..%s is reversed: %w", from, to, apperrors.ErrInvalidInput)
	}
	return s.history.Query(ctx, from, to)
}

func (s *ArchiveService) Get(ctx context.Context, key domain.HistoryKey) (domain.HistoryEntry, error) {
	return s.history.Get(ctx, key)
}

func (s *ArchiveService) Delete(ctx context.Context, keys []domain.HistoryKey) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.history.Delete(ctx, keys)
	if err != nil {
		return 0, err
	}
	s.logger.Info("sessions deleted", "requested", len(keys), "deleted", n)
	return n, nil
}

func (s *ArchiveService) Summarize(ctx context.Context, key domain.HistoryKey) (domain.HistoryEntry, domain.Summary, error) {
	entry, err := s.history.Get(ctx, key)
	if err != nil {
		return domain.HistoryEntry{}, domain.Summary{}, err
	}
	return entry, domain.Summarize(entry), nil
}

func (s *ArchiveService) Export(ctx context.Context, key domain.HistoryKey, dir string) (string, error) {
	if s.exporter == nil {
		return "", fmt.Errorf("history exporter is not configured")
	}
	entry, summary, err := s.Summarize(ctx, key)
	if err != nil {
		return "", err
	}
	path, err := s.exporter.Export(ctx, entry, summary, dir)
	if err != nil {
		return "", err
	}
	s.logger.Info("session exported", "key", key.String(), "path", path)
	return path, nil
}
