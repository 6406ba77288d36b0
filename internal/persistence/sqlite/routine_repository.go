package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/opsroster/internal/persistence"
)

// RoutineRepository implements persistence.RoutineRepository on SQLite.
type RoutineRepository struct {
	storage *Storage
}

// NewRoutineRepository binds the repository to the shared storage.
func NewRoutineRepository(storage *Storage) *RoutineRepository {
	return &RoutineRepository{storage: storage}
}

// CreateRoutine inserts a new routine template.
func (r *RoutineRepository) CreateRoutine(ctx context.Context, routine persistence.Routine) error {
	if routine.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if routine.CreatedAt.IsZero() {
		routine.CreatedAt = now
	}
	routine.UpdatedAt = now

	query := `
		INSERT INTO routines (id, name, department_id, area_ids, criticality, rule_type,
			time_slots, weekdays, interval_weeks, day_of_month, starts_on, ends_on,
			active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.storage.db.ExecContext(ctx, query,
		routine.ID,
		routine.Name,
		routine.DepartmentID,
		encodeStrings(routine.AreaIDs),
		routine.Criticality,
		routine.RuleType,
		encodeStrings(routine.TimeSlots),
		encodeWeekdays(routine.Weekdays),
		routine.IntervalWeeks,
		routine.DayOfMonth,
		formatTimePtr(routine.StartsOn),
		formatTimePtr(routine.EndsOn),
		boolToInt(routine.Active),
		formatTime(routine.CreatedAt),
		formatTime(routine.UpdatedAt),
	)
	return mapError(err)
}

// GetRoutine fetches a routine by id.
func (r *RoutineRepository) GetRoutine(ctx context.Context, id string) (persistence.Routine, error) {
	row := r.storage.db.QueryRowContext(ctx, selectRoutineQuery+" WHERE id = ?", id)
	routine, err := scanRoutine(row)
	if err != nil {
		return persistence.Routine{}, mapError(err)
	}
	return routine, nil
}

// ListActiveRoutines returns every active routine ordered by id for stable
// batch iteration.
func (r *RoutineRepository) ListActiveRoutines(ctx context.Context) ([]persistence.Routine, error) {
	rows, err := r.storage.db.QueryContext(ctx, selectRoutineQuery+" WHERE active = 1 ORDER BY id")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	routines := make([]persistence.Routine, 0)
	for rows.Next() {
		routine, err := scanRoutine(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan routine: %w", err)
		}
		routines = append(routines, routine)
	}
	return routines, rows.Err()
}

// DeactivateRoutine marks a routine inactive so future materialization runs
// skip it. The routine record itself is preserved.
func (r *RoutineRepository) DeactivateRoutine(ctx context.Context, id string, at time.Time) error {
	result, err := r.storage.db.ExecContext(ctx,
		"UPDATE routines SET active = 0, updated_at = ? WHERE id = ?",
		formatTime(at), id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

const selectRoutineQuery = `
	SELECT id, name, department_id, area_ids, criticality, rule_type,
		time_slots, weekdays, interval_weeks, day_of_month, starts_on, ends_on,
		active, created_at, updated_at
	FROM routines
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoutine(row rowScanner) (persistence.Routine, error) {
	var (
		routine            persistence.Routine
		areaIDs            string
		timeSlots          string
		weekdays           string
		startsOn           sql.NullString
		endsOn             sql.NullString
		active             int
		createdAt, updated string
	)

	err := row.Scan(
		&routine.ID,
		&routine.Name,
		&routine.DepartmentID,
		&areaIDs,
		&routine.Criticality,
		&routine.RuleType,
		&timeSlots,
		&weekdays,
		&routine.IntervalWeeks,
		&routine.DayOfMonth,
		&startsOn,
		&endsOn,
		&active,
		&createdAt,
		&updated,
	)
	if err != nil {
		return persistence.Routine{}, err
	}

	routine.AreaIDs = decodeStrings(areaIDs)
	routine.TimeSlots = decodeStrings(timeSlots)
	routine.Weekdays = decodeWeekdays(weekdays)
	routine.Active = active != 0

	if routine.StartsOn, err = parseTimePtr(startsOn); err != nil {
		return persistence.Routine{}, err
	}
	if routine.EndsOn, err = parseTimePtr(endsOn); err != nil {
		return persistence.Routine{}, err
	}
	if routine.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Routine{}, err
	}
	if routine.UpdatedAt, err = parseTime(updated); err != nil {
		return persistence.Routine{}, err
	}

	return routine, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
