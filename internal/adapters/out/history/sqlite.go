// Package history journals dispatch outcomes in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/bnema/eolkeeper/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS digest_outcome (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	digest      TEXT NOT NULL,
	eol_date    TEXT NOT NULL DEFAULT '',
	outcome     TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_digest_outcome_run ON digest_outcome (run_id);
`

// Store implements out.HistoryRecorder and out.HistoryReader.
type Store struct {
	db  *sql.DB
	log *log.Logger
	now func() time.Time
}

// Open opens (creating if needed) the journal at path.
func Open(path string, logger *log.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// Workers record concurrently; serialize writers on one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	l := logger.WithPrefix("history")
	l.Debug("history database ready", "path", path)
	return &Store{db: db, log: l, now: time.Now}, nil
}

// Record appends one digest outcome to runID.
func (s *Store) Record(ctx context.Context, runID string, result domain.DigestResult) error {
	date := ""
	if !result.EolDate.IsZero() {
		date = result.EolDate.String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO digest_outcome (run_id, digest, eol_date, outcome, error, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, result.Digest, date, string(result.Outcome), result.Error, s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record outcome of %s: %w", result.Digest, err)
	}
	return nil
}

// Failures returns the failed outcomes of runID in recording order.
func (s *Store) Failures(ctx context.Context, runID string) ([]domain.DigestResult, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM digest_outcome WHERE run_id = ?`, runID).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to look up run %s: %w", runID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, runID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT digest, eol_date, outcome, error FROM digest_outcome WHERE run_id = ? AND outcome = ? ORDER BY id`,
		runID, string(domain.OutcomeFailed),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures of run %s: %w", runID, err)
	}
	defer rows.Close()

	var results []domain.DigestResult
	for rows.Next() {
		var (
			r       domain.DigestResult
			date    string
			outcome string
		)
		if err := rows.Scan(&r.Digest, &date, &outcome, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		if date != "" {
			if r.EolDate, err = domain.ParseDate(date); err != nil {
				return nil, fmt.Errorf("corrupt history entry for %s: %w", r.Digest, err)
			}
		}
		r.Outcome = domain.AnnotationOutcome(outcome)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
