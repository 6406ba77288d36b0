package sqlite

import (
	"context"
	"time"

	"github.com/example/opsroster/internal/persistence"
)

// ShiftRepository implements persistence.ShiftRepository on SQLite.
type ShiftRepository struct {
	storage *Storage
}

// NewShiftRepository binds the repository to the shared storage.
func NewShiftRepository(storage *Storage) *ShiftRepository {
	return &ShiftRepository{storage: storage}
}

// CreateShift inserts a new shift slot.
func (r *ShiftRepository) CreateShift(ctx context.Context, shift persistence.Shift) error {
	if shift.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = now
	}
	shift.UpdatedAt = now

	query := `
		INSERT INTO shifts (id, department_id, start_time, end_time, required_skills,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.storage.db.ExecContext(ctx, query,
		shift.ID,
		shift.DepartmentID,
		formatTime(shift.Start),
		formatTime(shift.End),
		encodeStrings(shift.RequiredSkills),
		formatTime(shift.CreatedAt),
		formatTime(shift.UpdatedAt),
	)
	return mapError(err)
}

// GetShift fetches a shift by id.
func (r *ShiftRepository) GetShift(ctx context.Context, id string) (persistence.Shift, error) {
	query := `
		SELECT id, department_id, start_time, end_time, required_skills, created_at, updated_at
		FROM shifts
		WHERE id = ?
	`
	row := r.storage.db.QueryRowContext(ctx, query, id)

	var (
		shift                persistence.Shift
		start, end           string
		requiredSkills       string
		createdAt, updatedAt string
	)
	err := row.Scan(&shift.ID, &shift.DepartmentID, &start, &end, &requiredSkills, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Shift{}, mapError(err)
	}

	shift.RequiredSkills = decodeStrings(requiredSkills)
	if shift.Start, err = parseTime(start); err != nil {
		return persistence.Shift{}, err
	}
	if shift.End, err = parseTime(end); err != nil {
		return persistence.Shift{}, err
	}
	if shift.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Shift{}, err
	}
	if shift.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Shift{}, err
	}

	return shift, nil
}
