// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

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

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/report-engine/pkg/types"
)

const (
	dbFile            = "reports.db"
	defaultMaxResults = 20

	// timeLayout is fixed width so created_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrNotFound is returned when no report has the requested ID.
var ErrNotFound = errors.New("report not found")

// Store keeps final reports in a SQLite database. It is safe for concurrent
// use.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates reportsDir/reports.db and its schema.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.ReportsDir
	if dir == "" {
		dir = "reports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating reports directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			model TEXT NOT NULL,
			markdown TEXT NOT NULL,
			fact_count INTEGER NOT NULL DEFAULT 0,
			degraded_stages TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_model ON reports(model)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save inserts r, replacing any report with the same ID.
func (s *Store) Save(ctx context.Context, r types.Report) error {
	if r.ID == "" {
		return errors.New("report has no id")
	}
	stagesJSON, err := json.Marshal(r.DegradedStages)
	if err != nil {
		return fmt.Errorf("encoding degraded stages: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, topic, model, markdown, fact_count, degraded_stages, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			topic=excluded.topic, model=excluded.model, markdown=excluded.markdown,
			fact_count=excluded.fact_count, degraded_stages=excluded.degraded_stages,
			created_at=excluded.created_at`,
		r.ID, r.Topic, r.Model, r.Markdown, r.FactCount, string(stagesJSON),
		r.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("saving report %s: %w", r.ID, err)
	}
	return nil
}

// Get returns the report with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (types.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, topic, model, markdown, fact_count, degraded_stages, created_at
		 FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Report{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

// ListOptions filters List results.
type ListOptions struct {
	// Query matches topic or body text, case-insensitively.
	Query string

	// Model restricts results to one model identifier.
	Model string

	// Limit caps the result count. Zero uses the store default.
	Limit int
}

// List returns reports newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.Report, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, topic, model, markdown, fact_count, degraded_stages, created_at
		FROM reports WHERE 1=1`)
	if opts.Query != "" {
		pattern := "%" + escapeLike(opts.Query) + "%"
		qb.WriteString(` AND (topic LIKE ? ESCAPE '\' OR markdown LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if opts.Model != "" {
		qb.WriteString(` AND model = ?`)
		args = append(args, opts.Model)
	}
	qb.WriteString(` ORDER BY created_at DESC, id LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []types.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// Delete removes the report with the given ID, or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting report %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting report %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (types.Report, error) {
	var (
		r          types.Report
		stagesJSON sql.NullString
		createdAt  string
	)
	if err := sc.Scan(&r.ID, &r.Topic, &r.Model, &r.Markdown, &r.FactCount, &stagesJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scanning report: %w", err)
	}
	if stagesJSON.Valid && stagesJSON.String != "" {
		if err := json.Unmarshal([]byte(stagesJSON.String), &r.DegradedStages); err != nil {
			return r, fmt.Errorf("decoding degraded stages for %s: %w", r.ID, err)
		}
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return r, fmt.Errorf("parsing created_at for %s: %w", r.ID, err)
	}
	r.CreatedAt = t
	return r, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
