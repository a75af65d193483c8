// In file: internal/store/store.go

// Package store persists answered queries and benchmark runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Test types recorded with each answer.
const (
	TestTypeChat  = "chat"
	TestTypeLAMA  = "lama"
	TestTypeGSM8K = "gsm8k"
)

// Answer is one logged query and the response it received.
type Answer struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Source    string    `json:"source"`
	TestType  string    `json:"test_type"`
}

// BenchmarkRun is the persisted summary of one suite run.
type BenchmarkRun struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Suite     string    `json:"suite"`
	Correct   int       `json:"correct"`
	Total     int       `json:"total"`
	Accuracy  float64   `json:"accuracy"`
	Report    string    `json:"report"`
}

const schema = `
CREATE TABLE IF NOT EXISTS answers (
  id TEXT PRIMARY KEY,
  created_at INTEGER NOT NULL,
  query TEXT NOT NULL,
  response TEXT NOT NULL,
  source TEXT NOT NULL,
  test_type TEXT NOT NULL DEFAULT 'chat'
);
CREATE INDEX IF NOT EXISTS idx_answers_created_at ON answers(created_at);

CREATE TABLE IF NOT EXISTS benchmark_runs (
  id TEXT PRIMARY KEY,
  created_at INTEGER NOT NULL,
  suite TEXT NOT NULL,
  correct INTEGER NOT NULL,
  total INTEGER NOT NULL,
  accuracy REAL NOT NULL,
  report TEXT NOT NULL DEFAULT ''
);
`

// Store is a SQLite-backed answer log.
type Store struct {
	db *sql.DB
}

// Open creates the database file and its parent directory if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveAnswer records a. Empty ID, CreatedAt and TestType are filled in.
func (s *Store) SaveAnswer(ctx context.Context, a Answer) (Answer, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.TestType == "" {
		a.TestType = TestTypeChat
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO answers(id, created_at, query, response, source, test_type) VALUES(?, ?, ?, ?, ?, ?)`,
		a.ID, a.CreatedAt.UnixNano(), a.Query, a.Response, a.Source, a.TestType,
	)
	if err != nil {
		return a, fmt.Errorf("failed to save answer: %w", err)
	}
	return a, nil
}

// RecentAnswers returns up to limit answers, newest first. testType filters when non-empty.
func (s *Store) RecentAnswers(ctx context.Context, limit int, testType string) ([]Answer, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, query, response, source, test_type FROM answers
		 WHERE (? = '' OR test_type = ?)
		 ORDER BY created_at DESC LIMIT ?`,
		testType, testType, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var a Answer
		var created int64
		if err := rows.Scan(&a.ID, &created, &a.Query, &a.Response, &a.Source, &a.TestType); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		a.CreatedAt = time.Unix(0, created).UTC()
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// ClearAnswers deletes every logged answer and returns how many were removed.
func (s *Store) ClearAnswers(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM answers`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear answers: %w", err)
	}
	return res.RowsAffected()
}

// SaveRun records a benchmark run summary.
func (s *Store) SaveRun(ctx context.Context, run BenchmarkRun) (BenchmarkRun, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO benchmark_runs(id, created_at, suite, correct, total, accuracy, report) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.Suite, run.Correct, run.Total, run.Accuracy, run.Report,
	)
	if err != nil {
		return run, fmt.Errorf("failed to save benchmark run: %w", err)
	}
	return run, nil
}

// RecentRuns returns up to limit benchmark runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]BenchmarkRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, suite, correct, total, accuracy, report FROM benchmark_runs
		 ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark runs: %w", err)
	}
	defer rows.Close()

	var runs []BenchmarkRun
	for rows.Next() {
		var r BenchmarkRun
		var created int64
		if err := rows.Scan(&r.ID, &created, &r.Suite, &r.Correct, &r.Total, &r.Accuracy, &r.Report); err != nil {
			return nil, fmt.Errorf("failed to scan benchmark run: %w", err)
		}
		r.CreatedAt = time.Unix(0, created).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
