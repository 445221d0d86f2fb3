// Package store keeps the local history of report runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"aftermarket-report/internal/model"
)

// ErrRunNotFound is returned when no run has the requested ID
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS report_runs (
	id TEXT PRIMARY KEY,
	filters TEXT,
	status TEXT,
	row_count INTEGER DEFAULT 0,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS run_errors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT,
	error_message TEXT,
	created_at DATETIME
);
`

// Store is the run history database
type Store struct {
	db *sqlx.DB
}

type runRow struct {
	ID        string    `db:"id"`
	Filters   string    `db:"filters"`
	Status    string    `db:"status"`
	RowCount  int       `db:"row_count"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Open opens (creating if needed) the history database at dbPath
func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a new run in running state
func (s *Store) SaveRun(ctx context.Context, runID string, filters model.FilterSet) error {
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO report_runs (id, filters, status, row_count, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)`,
		runID, string(filtersJSON), model.RunRunning, now, now)
	return err
}

// UpdateRunStatus sets the status and row count of a run
func (s *Store) UpdateRunStatus(ctx context.Context, runID, status string, rowCount int) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE report_runs SET status = ?, row_count = ?, updated_at = ? WHERE id = ?`,
		status, rowCount, now, runID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// SaveRunError records an error for a run
func (s *Store) SaveRunError(ctx context.Context, runID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := s.db.ExecContext(ctx,
		`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, err.Error(), now)
	return e
}

// ListRuns returns the most recent runs first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, filters, status, row_count, created_at, updated_at FROM report_runs ORDER BY created_at DESC LIMIT ?`,
		limit); err != nil {
		return nil, err
	}

	runs := make([]model.Run, 0, len(rows))
	for _, r := range rows {
		run, err := r.toModel()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// GetRun fetches one run
func (s *Store) GetRun(ctx context.Context, runID string) (model.Run, error) {
	var r runRow
	err := s.db.GetContext(ctx, &r,
		`SELECT id, filters, status, row_count, created_at, updated_at FROM report_runs WHERE id = ?`, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrRunNotFound
	}
	if err != nil {
		return model.Run{}, err
	}
	return r.toModel()
}

// GetRunErrors returns the errors recorded for a run, oldest first
func (s *Store) GetRunErrors(ctx context.Context, runID string) ([]model.RunError, error) {
	runErrors := []model.RunError{}
	err := s.db.SelectContext(ctx, &runErrors,
		`SELECT id, run_id, error_message AS message, created_at FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	return runErrors, nil
}

func (r runRow) toModel() (model.Run, error) {
	var filters model.FilterSet
	if r.Filters != "" {
		if err := json.Unmarshal([]byte(r.Filters), &filters); err != nil {
			return model.Run{}, fmt.Errorf("run %s: invalid filters: %w", r.ID, err)
		}
	}
	return model.Run{
		ID:        r.ID,
		Filters:   filters,
		Status:    r.Status,
		RowCount:  r.RowCount,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}
