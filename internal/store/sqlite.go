package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/tidegauge/internal/log"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id                 TEXT PRIMARY KEY,
	station            TEXT NOT NULL,
	created_at         INTEGER NOT NULL,
	files              INTEGER NOT NULL,
	readings           INTEGER NOT NULL,
	valid_readings     INTEGER NOT NULL,
	run_start          INTEGER,
	run_end            INTEGER,
	rise_rate_per_hour REAL NOT NULL,
	rise_rate_per_year REAL NOT NULL,
	reference_time     INTEGER
);
CREATE INDEX IF NOT EXISTS runs_station_created ON runs (station, created_at);
CREATE TABLE IF NOT EXISTS run_constituents (
	run_id    TEXT NOT NULL REFERENCES runs (id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	name      TEXT NOT NULL,
	amplitude REAL NOT NULL,
	phase     REAL NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// SQLiteStore keeps runs in a local SQLite file
type SQLiteStore struct {
	db    *sql.DB
	clock clockwork.Clock
}

// NewSQLite opens (creating if needed) the database at path
func NewSQLite(path string, clock clockwork.Clock) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// one writer; modernc serialises anyway and this avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Debugf("opened SQLite run store at %s", path)
	return &SQLiteStore{db: db, clock: orRealClock(clock)}, nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, r *Run) error {
	stamp(r, s.clock)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, station, created_at, files, readings, valid_readings,
		                  run_start, run_end, rise_rate_per_hour, rise_rate_per_year, reference_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Station, r.CreatedAt.UnixNano(), r.Files, r.Readings, r.ValidReadings,
		toNanos(r.RunStart), toNanos(r.RunEnd), r.RiseRatePerHour, r.RiseRatePerYear,
		toNanos(r.ReferenceTime),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", r.ID, err)
	}

	for i, c := range r.Constituents {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_constituents (run_id, position, name, amplitude, phase) VALUES (?, ?, ?, ?, ?)`,
			r.ID, i, c.Name, c.Amplitude, c.Phase)
		if err != nil {
			return fmt.Errorf("failed to insert constituent %s: %w", c.Name, err)
		}
	}

	return tx.Commit()
}

const runColumns = `id, station, created_at, files, readings, valid_readings,
	run_start, run_end, rise_rate_per_hour, rise_rate_per_year, reference_time`

func (s *SQLiteStore) ListRuns(ctx context.Context, station string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE ? = '' OR station = ?
		ORDER BY created_at DESC, id
		LIMIT ?`, station, station, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, *r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		cs, err := s.constituents(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Constituents = cs
	}
	return runs, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	r.Constituents, err = s.constituents(ctx, id)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) constituents(ctx context.Context, runID string) ([]ConstituentResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, amplitude, phase FROM run_constituents WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query constituents: %w", err)
	}
	defer rows.Close()

	cs := []ConstituentResult{}
	for rows.Next() {
		var c ConstituentResult
		if err := rows.Scan(&c.Name, &c.Amplitude, &c.Phase); err != nil {
			return nil, fmt.Errorf("failed to scan constituent row: %w", err)
		}
		cs = append(cs, c)
	}
	return cs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var created int64
	var runStart, runEnd, ref sql.NullInt64

	err := sc.Scan(&r.ID, &r.Station, &created, &r.Files, &r.Readings, &r.ValidReadings,
		&runStart, &runEnd, &r.RiseRatePerHour, &r.RiseRatePerYear, &ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run row: %w", err)
	}

	r.CreatedAt = time.Unix(0, created).UTC()
	r.RunStart = fromNanos(runStart)
	r.RunEnd = fromNanos(runEnd)
	r.ReferenceTime = fromNanos(ref)
	return &r, nil
}

// Zero times are stored as NULL; UnixNano of the zero time overflows.
func toNanos(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromNanos(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return time.Unix(0, n.Int64).UTC()
}
