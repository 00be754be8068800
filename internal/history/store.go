// Package history keeps the click history for the lifetime of the process.
package history

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/verte-zerg/autoclick/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// memoryDSN keeps the database private to this process; nothing touches disk.
const memoryDSN = "file::memory:"

// Store is an append-only click log with one summary row per run.
type Store struct {
	db *sql.DB
}

// Open creates an empty in-memory history.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", memoryDSN)
	if err != nil {
		return nil, err
	}
	// Every pooled connection to :memory: would see its own empty database.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close releases the database. The history is gone afterwards.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL DEFAULT '',
			click_count INTEGER NOT NULL,
			interval_ms INTEGER NOT NULL,
			clicks INTEGER NOT NULL DEFAULT 0,
			cancelled INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS clicks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			clicked_at TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_clicks_run_id ON clicks(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// BeginRun records the start of a run and returns its id.
func (s *Store) BeginRun(ctx context.Context, cfg model.ClickConfig, startedAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, click_count, interval_ms) VALUES (?, ?, ?)`,
		startedAt.Format(time.RFC3339Nano), cfg.ClickCount, cfg.IntervalMs)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Append adds a click event to the end of the history.
func (s *Store) Append(ctx context.Context, runID int64, ev model.ClickEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO clicks (run_id, seq, clicked_at, x, y) VALUES (?, ?, ?, ?, ?)`,
		runID, ev.Sequence, ev.Timestamp.Format(time.RFC3339Nano), ev.Position.X, ev.Position.Y,
	); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE runs SET clicks = clicks + 1 WHERE id = ?`, runID); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// FinishRun stores the outcome of a run.
func (s *Store) FinishRun(ctx context.Context, runID int64, result model.RunResult, endedAt time.Time) error {
	errText := ""
	if result.Err != nil {
		errText = result.Err.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET ended_at = ?, cancelled = ?, error = ? WHERE id = ?`,
		endedAt.Format(time.RFC3339Nano), boolToInt(result.Cancelled), errText, runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("unknown run")
	}
	return nil
}

// Len returns the number of recorded clicks.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clicks`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Events returns every recorded click in insertion order.
func (s *Store) Events(ctx context.Context) ([]model.ClickEvent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, clicked_at, x, y FROM clicks ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			_ = cerr
		}
	}()

	var events []model.ClickEvent
	for rows.Next() {
		var ev model.ClickEvent
		var clickedAt string
		if err := rows.Scan(&ev.Sequence, &clickedAt, &ev.Position.X, &ev.Position.Y); err != nil {
			return nil, err
		}
		ev.Timestamp, err = parseTime(clickedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Runs returns run summaries, oldest first.
func (s *Store) Runs(ctx context.Context) ([]model.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, ended_at, click_count, interval_ms, clicks, cancelled, error
		 FROM runs ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			_ = cerr
		}
	}()

	var runs []model.RunSummary
	for rows.Next() {
		var run model.RunSummary
		var startedAt, endedAt string
		var cancelled int
		if err := rows.Scan(&run.ID, &startedAt, &endedAt, &run.Config.ClickCount, &run.Config.IntervalMs, &run.Clicks, &cancelled, &run.Error); err != nil {
			return nil, err
		}
		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if endedAt != "" {
			if run.EndedAt, err = parseTime(endedAt); err != nil {
				return nil, err
			}
		}
		run.Cancelled = cancelled != 0
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
