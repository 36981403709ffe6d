package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"prodman/internal/modules/archive/domain"
	archiveout "prodman/internal/modules/archive/port/out"
	apperrors "prodman/internal/platform/errors"

	_ "modernc.org/sqlite"
)

var (
	_ archiveout.TemplateStore = (*SQLiteStore)(nil)
	_ archiveout.HistoryStore  = (*SQLiteStore)(nil)
)

// SQLiteStore keeps templates and session history in one database file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers; id allocation relies on it.
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	ddl := []string{`
CREATE TABLE IF NOT EXISTS templates (
  template_id TEXT PRIMARY KEY,
  blocks TEXT NOT NULL,
  schema_version INTEGER NOT NULL,
  updated_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS history (
  session_date TEXT NOT NULL,
  session_id INTEGER NOT NULL,
  session_name TEXT,
  run_id TEXT,
  recorded_at TEXT NOT NULL,
  timeline TEXT NOT NULL,
  schedule TEXT NOT NULL,
  PRIMARY KEY (session_date, session_id)
);`}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create archive tables: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveTemplate(ctx context.Context, t domain.Template) (bool, error) {
	raw, err := json.Marshal(t.Blocks)
	if err != nil {
		return false, fmt.Errorf("encode template blocks: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin template tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM templates WHERE template_id = ?`, t.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup template: %w", err)
	}
	const stmt = `
INSERT INTO templates (template_id, blocks, schema_version, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(template_id) DO UPDATE SET
  blocks=excluded.blocks,
  schema_version=excluded.schema_version,
  updated_at=excluded.updated_at;
`
	if _, err := tx.ExecContext(ctx, stmt, t.ID, string(raw), domain.SchemaVersion, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return false, fmt.Errorf("upsert template: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit template: %w", err)
	}
	return exists > 0, nil
}

func (s *SQLiteStore) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT template_id, blocks FROM templates ORDER BY template_id`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()
	var out []domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetTemplate(ctx context.Context, id string) (domain.Template, error) {
	row := s.db.QueryRowContext(ctx, `SELECT template_id, blocks FROM templates WHERE template_id = ?`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Template{}, fmt.Errorf("template %q: %w", id, apperrors.ErrNotFound)
	}
	return t, err
}

func (s *SQLiteStore) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE template_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %q: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) InsertNext(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryKey, error) {
	timeline, err := json.Marshal(entry.Timeline)
	if err != nil {
		return domain.HistoryKey{}, fmt.Errorf("encode timeline: %w", err)
	}
	schedule, err := json.Marshal(entry.Schedule)
	if err != nil {
		return domain.HistoryKey{}, fmt.Errorf("encode schedule: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.HistoryKey{}, fmt.Errorf("begin history tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(session_id) + 1, 0) FROM history WHERE session_date = ?`, entry.Key.Date).Scan(&next)
	if err != nil {
		return domain.HistoryKey{}, fmt.Errorf("allocate session id: %w", err)
	}
	const stmt = `
INSERT INTO history (session_date, session_id, session_name, run_id, recorded_at, timeline, schedule)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	_, err = tx.ExecContext(ctx, stmt,
		entry.Key.Date,
		next,
		nullable(entry.Name),
		nullable(entry.RunID),
		entry.RecordedAt.Format(time.RFC3339Nano),
		string(timeline),
		string(schedule),
	)
	if err != nil {
		return domain.HistoryKey{}, fmt.Errorf("insert history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.HistoryKey{}, fmt.Errorf("commit history: %w", err)
	}
	return domain.HistoryKey{Date: entry.Key.Date, ID: next}, nil
}

func (s *SQLiteStore) Query(ctx context.Context, from, to string) ([]domain.HistoryEntry, error) {
	var (
		where []string
		args  []any
	)
	if from != "" {
		where = append(where, "session_date >= ?")
		args = append(args, from)
	}
	if to != "" {
		where = append(where, "session_date <= ?")
		args = append(args, to)
	}
	query := historyColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY session_date, session_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	var out []domain.HistoryEntry
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, key domain.HistoryKey) (domain.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, historyColumns+" WHERE session_date = ? AND session_id = ?", key.Date, key.ID)
	e, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HistoryEntry{}, fmt.Errorf("session %s: %w", key, apperrors.ErrNotFound)
	}
	return e, err
}

func (s *SQLiteStore) Delete(ctx context.Context, keys []domain.HistoryKey) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	total := 0
	for _, k := range keys {
		res, err := tx.ExecContext(ctx, `DELETE FROM history WHERE session_date = ? AND session_id = ?`, k.Date, k.ID)
		if err != nil {
			return 0, fmt.Errorf("delete session %s: %w", k, err)
		}
		n, _ := res.RowsAffected()
		total += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete: %w", err)
	}
	return total, nil
}

const historyColumns = `SELECT session_date, session_id, session_name, run_id, recorded_at, timeline, schedule FROM history`

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (domain.Template, error) {
	var (
		t   domain.Template
		raw string
	)
	if err := row.Scan(&t.ID, &raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Template{}, err
		}
		return domain.Template{}, fmt.Errorf("scan template: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &t.Blocks); err != nil {
		return domain.Template{}, fmt.Errorf("decode template %q: %w", t.ID, err)
	}
	return t, nil
}

func scanHistory(row scanner) (domain.HistoryEntry, error) {
	var (
		e                  domain.HistoryEntry
		name, runID        sql.NullString
		recorded           string
		timeline, schedule string
	)
	if err := row.Scan(&e.Key.Date, &e.Key.ID, &name, &runID, &recorded, &timeline, &schedule); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.HistoryEntry{}, err
		}
		return domain.HistoryEntry{}, fmt.Errorf("scan history: %w", err)
	}
	e.Name = name.String
	e.RunID = runID.String
	if ts, err := time.Parse(time.RFC3339Nano, recorded); err == nil {
		e.RecordedAt = ts
	}
	if err := json.Unmarshal([]byte(timeline), &e.Timeline); err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("decode timeline %s: %w", e.Key, err)
	}
	if err := json.Unmarshal([]byte(schedule), &e.Schedule); err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("decode schedule %s: %w", e.Key, err)
	}
	return e, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
