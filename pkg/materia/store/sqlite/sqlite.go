// Package sqlite implements the run store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/esglens/materia/pkg/materia/internalerr"
	"github.com/esglens/materia/pkg/materia/store"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes
// the schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	company TEXT NOT NULL,
	generated_at TEXT NOT NULL,
	article_count INTEGER NOT NULL DEFAULT 0,
	overall_direction TEXT,
	update_necessity TEXT,
	report_json BLOB
);

CREATE INDEX IF NOT EXISTS idx_runs_company ON runs(company, generated_at);

CREATE TABLE IF NOT EXISTS recommendations (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	subject TEXT NOT NULL,
	type TEXT NOT NULL,
	action TEXT,
	confidence REAL NOT NULL DEFAULT 0,
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_recs_run ON recommendations(run_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores a run and its recommendations in one transaction.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const runStmt = `
INSERT INTO runs (id, company, generated_at, article_count, overall_direction, update_necessity, report_json)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	company=excluded.company,
	generated_at=excluded.generated_at,
	article_count=excluded.article_count,
	overall_direction=excluded.overall_direction,
	update_necessity=excluded.update_necessity,
	report_json=excluded.report_json;
`
	if _, err := tx.ExecContext(ctx, runStmt,
		r.ID, r.Company, r.GeneratedAt.UTC().Format(time.RFC3339),
		r.ArticleCount, r.OverallDirection, r.UpdateNecessity, r.ReportJSON); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations WHERE run_id = ?`, r.ID); err != nil {
		return fmt.Errorf("clear recommendations: %w", err)
	}

	const recStmt = `
INSERT INTO recommendations (id, run_id, subject, type, action, confidence)
VALUES (?, ?, ?, ?, ?, ?);
`
	for _, rec := range r.Recommendations {
		if _, err := tx.ExecContext(ctx, recStmt,
			rec.ID, r.ID, rec.Subject, rec.Type, rec.Action, rec.Confidence); err != nil {
			return fmt.Errorf("insert recommendation: %w", err)
		}
	}

	return tx.Commit()
}

func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	const q = `
SELECT id, company, generated_at, article_count, overall_direction, update_necessity, report_json
FROM runs WHERE id = ?;
`
	var r store.Run
	var generatedAt string
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&r.ID, &r.Company, &generatedAt, &r.ArticleCount,
		&r.OverallDirection, &r.UpdateNecessity, &r.ReportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("%w: run %s", internalerr.ErrNotFound, id)
	}
	if err != nil {
		return store.Run{}, err
	}

	if r.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt); err != nil {
		return store.Run{}, fmt.Errorf("parse generated_at: %w", err)
	}

	if r.Recommendations, err = s.Recommendations(ctx, r.ID); err != nil {
		return store.Run{}, err
	}
	return r, nil
}

func (s *sqliteStore) ListRuns(ctx context.Context, company string, limit int) ([]store.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	const q = `
SELECT r.id, r.company, r.generated_at, r.overall_direction, r.update_necessity,
	(SELECT COUNT(*) FROM recommendations WHERE run_id = r.id)
FROM runs r
WHERE (? = '' OR r.company = ?)
ORDER BY r.generated_at DESC
LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, q, company, company, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.RunSummary
	for rows.Next() {
		var rs store.RunSummary
		var generatedAt string
		if err := rows.Scan(&rs.ID, &rs.Company, &generatedAt, &rs.OverallDirection, &rs.UpdateNecessity, &rs.Recommendations); err != nil {
			return nil, err
		}
		if rs.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt); err != nil {
			return nil, fmt.Errorf("parse generated_at: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Recommendations(ctx context.Context, runID string) ([]store.Recommendation, error) {
	const q = `
SELECT id, run_id, subject, type, action, confidence
FROM recommendations
WHERE run_id = ?
ORDER BY confidence DESC, subject ASC;
`
	rows, err := s.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Recommendation
	for rows.Next() {
		var rec store.Recommendation
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Subject, &rec.Type, &rec.Action, &rec.Confidence); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
