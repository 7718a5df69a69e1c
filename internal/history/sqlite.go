package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStore is a Store backed by database/sql and modernc.org/sqlite.
type SQLiteStore struct {
	db     *sql.DB
	owned  bool
	logger logging.Logger
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(path string, logger logging.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("history path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history pragmas: %w", err)
	}
	s, err := NewSQLiteStore(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewSQLiteStore runs the schema against db. The caller keeps ownership of
// db; Close does not close it.
func NewSQLiteStore(db *sql.DB, logger logging.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger.With(logging.Field{Key: "component", Value: "history"})}, nil
}

// Fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	if e.ReportID == "" {
		return fmt.Errorf("record: report id is required")
	}
	if e.SubmittedAt.IsZero() {
		e.SubmittedAt = time.Now()
	}
	if e.Status == "" {
		e.Status = model.StatusPending
	}
	var score sql.NullInt64
	if e.Score != nil {
		score = sql.NullInt64{Int64: int64(*e.Score), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (report_id, repo_url, owner, name, submitted_at, status, score, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(report_id) DO UPDATE SET
			repo_url = excluded.repo_url,
			owner = excluded.owner,
			name = excluded.name,
			submitted_at = excluded.submitted_at,
			status = excluded.status,
			score = excluded.score,
			updated_at = excluded.updated_at`,
		e.ReportID, e.RepoURL, e.Owner, e.Name, formatTime(e.SubmittedAt), string(e.Status), score, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("record %s: %w", e.ReportID, err)
	}
	s.logger.Debug("recorded analysis", logging.Field{Key: "report_id", Value: e.ReportID})
	return nil
}

func (s *SQLiteStore) UpdateResult(ctx context.Context, reportID string, status model.Status, score *int) error {
	var sc sql.NullInt64
	if score != nil {
		sc = sql.NullInt64{Int64: int64(*score), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, score = ?, updated_at = ? WHERE report_id = ?`,
		string(status), sc, formatTime(time.Now()), reportID)
	if err != nil {
		return fmt.Errorf("update %s: %w", reportID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

const selectColumns = `report_id, repo_url, owner, name, submitted_at, status, score, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e                  Entry
		submitted, updated string
		status             string
		score              sql.NullInt64
	)
	if err := row.Scan(&e.ReportID, &e.RepoURL, &e.Owner, &e.Name, &submitted, &status, &score, &updated); err != nil {
		return nil, err
	}
	e.SubmittedAt = parseTime(submitted)
	e.UpdatedAt = parseTime(updated)
	e.Status = model.Status(status)
	if score.Valid {
		v := int(score.Int64)
		e.Score = &v
	}
	return &e, nil
}

func (s *SQLiteStore) Get(ctx context.Context, reportID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM analyses WHERE report_id = ?`, reportID)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("get %s: %w", reportID, err)
	}
	return e, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Entry, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM analyses ORDER BY submitted_at DESC, report_id`, limit)
}

func (s *SQLiteStore) ListByRepo(ctx context.Context, repoURL string, limit int) ([]Entry, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM analyses WHERE repo_url = ? ORDER BY submitted_at DESC, report_id`, limit, repoURL)
}

func (s *SQLiteStore) query(ctx context.Context, q string, limit int, args ...any) ([]Entry, error) {
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, reportID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE report_id = ?`, reportID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", reportID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
