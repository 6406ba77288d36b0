// Package sqlite implements the persistence repositories on SQLite using the
// CGO-free modernc.org driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/opsroster/internal/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS routines (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	department_id  TEXT NOT NULL DEFAULT '',
	area_ids       TEXT NOT NULL DEFAULT '[]',
	criticality    INTEGER NOT NULL DEFAULT 1,
	rule_type      TEXT NOT NULL,
	time_slots     TEXT NOT NULL DEFAULT '[]',
	weekdays       TEXT NOT NULL DEFAULT '[]',
	interval_weeks INTEGER NOT NULL DEFAULT 0,
	day_of_month   INTEGER NOT NULL DEFAULT 0,
	starts_on      TEXT,
	ends_on        TEXT,
	active         INTEGER NOT NULL DEFAULT 1,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS work_items (
	id            TEXT PRIMARY KEY,
	routine_id    TEXT NOT NULL REFERENCES routines(id),
	area_id       TEXT NOT NULL,
	due_at        TEXT NOT NULL,
	window_start  TEXT,
	window_end    TEXT,
	criticality   INTEGER NOT NULL DEFAULT 1,
	status        TEXT NOT NULL DEFAULT 'pending',
	urgency_score REAL NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_work_items_natural_key
	ON work_items (routine_id, area_id, due_at);

CREATE TABLE IF NOT EXISTS employees (
	id             TEXT PRIMARY KEY,
	display_name   TEXT NOT NULL,
	availability   TEXT,
	skills         TEXT NOT NULL DEFAULT '[]',
	seniority_rank REAL NOT NULL DEFAULT 0,
	department_ids TEXT NOT NULL DEFAULT '[]',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS shifts (
	id              TEXT PRIMARY KEY,
	department_id   TEXT NOT NULL DEFAULT '',
	start_time      TEXT NOT NULL,
	end_time        TEXT NOT NULL,
	required_skills TEXT NOT NULL DEFAULT '[]',
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
	id          TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL REFERENCES employees(id),
	shift_id    TEXT NOT NULL REFERENCES shifts(id),
	start_time  TEXT NOT NULL,
	end_time    TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assignments_employee_start
	ON assignments (employee_id, start_time);
`

// Storage owns the database handle shared by the repositories.
type Storage struct {
	db *sql.DB
}

// Open connects to the SQLite database at the given DSN.
func Open(dsn string) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}

	// modernc's driver serializes writes; a single connection sidesteps
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	return &Storage{db: db}, nil
}

// Migrate applies the schema. It is idempotent and safe to run on every
// startup.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for health checks.
func (s *Storage) DB() *sql.DB {
	return s.db
}

// Ping verifies the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// mapError translates driver errors into the persistence taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return persistence.ErrNotFound
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return persistence.ErrDuplicate
	case strings.Contains(msg, "constraint failed"):
		return persistence.ErrConstraintViolation
	default:
		return err
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, raw)
}

func parseTimePtr(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	t, err := parseTime(raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
