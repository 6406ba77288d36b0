package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/opsroster/internal/persistence"
	"github.com/example/opsroster/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// storage instance for integration-style persistence tests.
type SQLiteHarness struct {
	Routines    persistence.RoutineRepository
	WorkItems   persistence.WorkItemRepository
	Employees   persistence.EmployeeRepository
	Shifts      persistence.ShiftRepository
	Assignments persistence.AssignmentRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "opsroster.db")

	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Routines:    sqlite.NewRoutineRepository(storage),
		WorkItems:   sqlite.NewWorkItemRepository(storage),
		Employees:   sqlite.NewEmployeeRepository(storage),
		Shifts:      sqlite.NewShiftRepository(storage),
		Assignments: sqlite.NewAssignmentRepository(storage),
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
