package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/opsroster/internal/persistence"
)

// AssignmentRepository implements persistence.AssignmentRepository on SQLite.
type AssignmentRepository struct {
	storage *Storage
}

// NewAssignmentRepository binds the repository to the shared storage.
func NewAssignmentRepository(storage *Storage) *AssignmentRepository {
	return &AssignmentRepository{storage: storage}
}

// CreateAssignment records an employee holding a shift.
func (r *AssignmentRepository) CreateAssignment(ctx context.Context, assignment persistence.Assignment) error {
	if assignment.ID == "" || assignment.EmployeeID == "" || assignment.ShiftID == "" {
		return persistence.ErrConstraintViolation
	}

	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO assignments (id, employee_id, shift_id, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.storage.db.ExecContext(ctx, query,
		assignment.ID,
		assignment.EmployeeID,
		assignment.ShiftID,
		formatTime(assignment.Start),
		formatTime(assignment.End),
		formatTime(assignment.CreatedAt),
	)
	return mapError(err)
}

// ListWeekAssignments returns assignments for the given employees whose start
// falls within [weekStart, weekEnd), ordered by employee then start time.
func (r *AssignmentRepository) ListWeekAssignments(ctx context.Context, employeeIDs []string, weekStart, weekEnd time.Time) ([]persistence.Assignment, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(employeeIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT id, employee_id, shift_id, start_time, end_time, created_at
		FROM assignments
		WHERE employee_id IN (%s) AND start_time >= ? AND start_time < ?
		ORDER BY employee_id, start_time
	`, placeholders)

	args := make([]any, 0, len(employeeIDs)+2)
	for _, id := range employeeIDs {
		args = append(args, id)
	}
	args = append(args, formatTime(weekStart), formatTime(weekEnd))

	rows, err := r.storage.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	assignments := make([]persistence.Assignment, 0)
	for rows.Next() {
		var (
			assignment persistence.Assignment
			start, end string
			createdAt  string
		)
		if err := rows.Scan(&assignment.ID, &assignment.EmployeeID, &assignment.ShiftID, &start, &end, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan assignment: %w", err)
		}
		if assignment.Start, err = parseTime(start); err != nil {
			return nil, err
		}
		if assignment.End, err = parseTime(end); err != nil {
			return nil, err
		}
		if assignment.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}
