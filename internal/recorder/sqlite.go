package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"BandWatch/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists band runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so API readers do not block the scheduler's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS band_runs (
			id             TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			ticker         TEXT NOT NULL,
			source         TEXT,
			mode           TEXT NOT NULL,
			fill           TEXT NOT NULL,
			start_day      INTEGER NOT NULL,
			end_day        INTEGER NOT NULL,
			min_max_window INTEGER NOT NULL,
			range_window   INTEGER NOT NULL,
			multiplier     REAL NOT NULL,
			row_count      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON band_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS band_rows (
			run_id    TEXT NOT NULL REFERENCES band_runs(id),
			seq       INTEGER NOT NULL,
			day       INTEGER NOT NULL,
			value     REAL,
			min_val   REAL,
			max_val   REAL,
			range_val REAL,
			avg_range REAL,
			upper     REAL,
			lower     REAL,
			middle    REAL,
			PRIMARY KEY (run_id, seq)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func nullable(f model.NullFloat) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f.Float64, Valid: f.Valid}
}

func fromNullable(f sql.NullFloat64) model.NullFloat {
	return model.NullFloat{Float64: f.Float64, Valid: f.Valid}
}

// RecordRun stores the run and all of its rows in one transaction. An empty
// ID is filled with a fresh UUID.
func (r *SQLiteRecorder) RecordRun(ctx context.Context, run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.RecordedAt.IsZero() {
		run.RecordedAt = time.Now()
	}
	bs := run.Series

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO band_runs
		(id, timestamp, ticker, source, mode, fill, start_day, end_day,
		 min_max_window, range_window, multiplier, row_count)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.RecordedAt.Unix(), run.Ticker, run.Source, string(bs.Mode), string(bs.Fill),
		run.Start.Unix(), run.End.Unix(),
		bs.Params.MinMaxWindow, bs.Params.RangeWindow, bs.Params.Multiplier, len(bs.Rows),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO band_rows
		(run_id, seq, day, value, min_val, max_val, range_val, avg_range, upper, lower, middle)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare rows: %w", err)
	}
	defer stmt.Close()

	for i, row := range bs.Rows {
		if _, err := stmt.ExecContext(ctx, run.ID, i, row.Time.Unix(),
			nullable(row.Value), nullable(row.Min), nullable(row.Max), nullable(row.Range),
			nullable(row.AvgRange), nullable(row.Upper), nullable(row.Lower), nullable(row.Middle),
		); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

const runColumns = `id, timestamp, ticker, source, mode, fill, start_day, end_day,
	min_max_window, range_window, multiplier, row_count`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, int, error) {
	var (
		run          Run
		ts, from, to int64
		mode, fill   string
		rows         int
		params       model.BandParams
	)
	if err := s.Scan(&run.ID, &ts, &run.Ticker, &run.Source, &mode, &fill, &from, &to,
		&params.MinMaxWindow, &params.RangeWindow, &params.Multiplier, &rows); err != nil {
		return nil, 0, err
	}
	run.RecordedAt = time.Unix(ts, 0)
	run.Start = time.Unix(from, 0).UTC()
	run.End = time.Unix(to, 0).UTC()
	run.Series = &model.BandSeries{
		Symbol: run.Ticker,
		Mode:   model.Mode(mode),
		Fill:   model.Fill(fill),
		Params: params,
	}
	return &run, rows, nil
}

// ListRuns returns the most recent runs first.
func (r *SQLiteRecorder) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM band_runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	out := []RunSummary{}
	for rows.Next() {
		run, n, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, RunSummary{
			ID:         run.ID,
			RecordedAt: run.RecordedAt,
			Ticker:     run.Ticker,
			Source:     run.Source,
			Mode:       run.Series.Mode,
			Fill:       run.Series.Fill,
			Start:      run.Start,
			End:        run.End,
			Rows:       n,
		})
	}
	return out, rows.Err()
}

// LoadRun reads a run and its rows back.
func (r *SQLiteRecorder) LoadRun(ctx context.Context, id string) (*Run, error) {
	run, n, err := scanRun(r.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM band_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT day, value, min_val, max_val, range_val,
		avg_range, upper, lower, middle FROM band_rows WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load rows %s: %w", id, err)
	}
	defer rows.Close()

	run.Series.Rows = make([]model.BandRow, 0, n)
	for rows.Next() {
		var (
			day  int64
			cols [8]sql.NullFloat64
		)
		if err := rows.Scan(&day, &cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5], &cols[6], &cols[7]); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		run.Series.Rows = append(run.Series.Rows, model.BandRow{
			Time:     time.Unix(day, 0).UTC(),
			Value:    fromNullable(cols[0]),
			Min:      fromNullable(cols[1]),
			Max:      fromNullable(cols[2]),
			Range:    fromNullable(cols[3]),
			AvgRange: fromNullable(cols[4]),
			Upper:    fromNullable(cols[5]),
			Lower:    fromNullable(cols[6]),
			Middle:   fromNullable(cols[7]),
		})
	}
	return run, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
