package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"prodman/internal/modules/archive/domain"
	archiveout "prodman/internal/modules/archive/port/out"
	"prodman/internal/platform/markdown"
	"prodman/internal/platform/slug"
)

// MarkdownExporter writes one note per recorded session under
// <dir>/<yyyy>/<mm>/<date>-<id>-<name>.md. Re-exporting refreshes the
// generated sections and keeps anything the user wrote around them.
type MarkdownExporter struct {
	defaultDir string
}

func NewMarkdownExporter(defaultDir string) archiveout.HistoryExporter {
	return &MarkdownExporter{defaultDir: defaultDir}
}

func (e *MarkdownExporter) Export(_ context.Context, entry domain.HistoryEntry, summary domain.Summary, dir string) (string, error) {
	if dir == "" {
		dir = e.defaultDir
	}
	if dir == "" {
		return "", fmt.Errorf("export directory is not configured")
	}
	day, err := domain.ParseDate(entry.Key.Date)
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, day.Format("2006"), day.Format("01"))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	name := fmt.Sprintf("%s-%d-%s.md", entry.Key.Date, entry.Key.ID, slug.Make(entry.Name, "session"))
	path := filepath.Join(target, name)

	note := markdown.Note{Body: fmt.Sprintf("# Session %s\n", entry.Key)}
	if raw, err := os.ReadFile(path); err == nil {
		if existing, err := markdown.Parse(string(raw)); err == nil {
			note.Body = existing.Body
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read session note: %w", err)
	}

	note.Meta = map[string]any{
		"schema_version": domain.SchemaVersion,
		"date":           entry.Key.Date,
		"session_id":     entry.Key.ID,
		"name":           entry.Name,
		"run_id":         entry.RunID,
		"recorded_at":    entry.RecordedAt.Format(time.RFC3339),
		"segments":       len(entry.Timeline),
		"blocks":         len(entry.Schedule),
	}
	note.Body = markdown.ReplaceSection(note.Body, "summary", renderSummary(summary))
	note.Body = markdown.ReplaceSection(note.Body, "timeline", renderTimeline(entry.Timeline))

	rendered, err := note.Render()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	return path, nil
}

func renderSummary(s domain.Summary) string {
	var b strings.Builder
	b.WriteString("## Progress\n\n| task | actual / goal |\n| --- | --- |\n")
	for _, t := range s.Tasks {
		fmt.Fprintf(&b, "| %s | %s |\n", t.Task, t.Text)
	}
	if len(s.Focus) > 0 {
		b.WriteString("\n## Focus\n\n| task | focus | actual / goal |\n| --- | --- | --- |\n")
		for _, f := range s.Focus {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", f.Task, f.Focus, f.Text)
		}
	}
	return b.String()
}

func renderTimeline(segments []domain.Segment) string {
	var b strings.Builder
	b.WriteString("## Timeline\n\n")
	for _, s := range segments {
		fmt.Fprintf(&b, "- %s-%s %s (%.1f min)", s.Start.Format("15:04:05"), s.End.Format("15:04:05"), s.Task, s.Length)
		if s.Focus != "" {
			fmt.Fprintf(&b, ": %s", s.Focus)
		}
		b.WriteString("\n")
	}
	return b.String()
}
