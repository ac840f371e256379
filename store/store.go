// Package store indexes finished runs in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/leverbox/env"
	"github.com/pthm-cable/leverbox/telemetry"
)

// ErrNotFound is returned when a run id is not in the index.
var ErrNotFound = errors.New("store: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	seed          INTEGER NOT NULL,
	steps         INTEGER NOT NULL,
	started_at    TEXT NOT NULL,
	finished_at   TEXT NOT NULL,
	run_log_path  TEXT,
	gif_path      TEXT,
	output_dir    TEXT,
	summary_json  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS steps (
	run_id          TEXT NOT NULL,
	timestep        INTEGER NOT NULL,
	x               REAL NOT NULL,
	y               REAL NOT NULL,
	z               REAL NOT NULL,
	reward          REAL NOT NULL,
	energy          REAL NOT NULL,
	left_contacts   INTEGER NOT NULL,
	right_contacts  INTEGER NOT NULL,
	PRIMARY KEY (run_id, timestep),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// timeLayout stores timestamps in UTC with all nine fractional digits so
// that text order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// RunRecord is one indexed run.
type RunRecord struct {
	ID         string
	Seed       int64
	Steps      int
	StartedAt  time.Time
	FinishedAt time.Time
	RunLogPath string
	GIFPath    string
	OutputDir  string
	Summary    telemetry.Summary
}

// Store manages the run index in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// RecordRun inserts rec and its step records in one transaction.
// An empty rec.ID is replaced with a new UUID. Returns the stored record.
func (s *Store) RecordRun(rec RunRecord, steps []env.StepRecord) (RunRecord, error) {
	if rec.ID == "" {
		rec.ID = NewRunID()
	}
	rec.Summary.RunID = rec.ID

	sumJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return RunRecord{}, fmt.Errorf("marshal summary: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return RunRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, seed, steps, started_at, finished_at, run_log_path, gif_path, output_dir, summary_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Seed, rec.Steps,
		formatTime(rec.StartedAt), formatTime(rec.FinishedAt),
		rec.RunLogPath, rec.GIFPath, rec.OutputDir, string(sumJSON),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}

	if len(steps) > 0 {
		stmt, err := tx.Prepare(
			`INSERT INTO steps (run_id, timestep, x, y, z, reward, energy, left_contacts, right_contacts)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return RunRecord{}, fmt.Errorf("prepare steps: %w", err)
		}
		defer stmt.Close()

		for _, st := range steps {
			if _, err := stmt.Exec(rec.ID, st.Timestep,
				st.Position[0], st.Position[1], st.Position[2],
				st.Reward, st.Energy, st.LeftLeverContacts, st.RightLeverContacts); err != nil {
				return RunRecord{}, fmt.Errorf("insert step %d: %w", st.Timestep, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return RunRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

const runColumns = `run_id, seed, steps, started_at, finished_at, run_log_path, gif_path, output_dir, summary_json`

// GetRun loads one run by id.
func (s *Store) GetRun(id string) (RunRecord, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrNotFound
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return rec, nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// StepsFor returns the step records of a run in timestep order.
func (s *Store) StepsFor(id string) ([]env.StepRecord, error) {
	rows, err := s.db.Query(
		`SELECT timestep, x, y, z, reward, energy, left_contacts, right_contacts
		 FROM steps WHERE run_id = ? ORDER BY timestep`, id)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var out []env.StepRecord
	for rows.Next() {
		var r env.StepRecord
		if err := rows.Scan(&r.Timestep, &r.Position[0], &r.Position[1], &r.Position[2],
			&r.Reward, &r.Energy, &r.LeftLeverContacts, &r.RightLeverContacts); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunRecord, error) {
	var (
		rec                  RunRecord
		started, finished    string
		logPath, gif, outDir sql.NullString
		sumJSON              string
	)
	if err := sc.Scan(&rec.ID, &rec.Seed, &rec.Steps, &started, &finished,
		&logPath, &gif, &outDir, &sumJSON); err != nil {
		return RunRecord{}, err
	}

	var err error
	if rec.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return RunRecord{}, fmt.Errorf("parse started_at: %w", err)
	}
	if rec.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return RunRecord{}, fmt.Errorf("parse finished_at: %w", err)
	}
	rec.RunLogPath, rec.GIFPath, rec.OutputDir = logPath.String, gif.String, outDir.String

	if err := json.Unmarshal([]byte(sumJSON), &rec.Summary); err != nil {
		return RunRecord{}, fmt.Errorf("unmarshal summary: %w", err)
	}
	return rec, nil
}
