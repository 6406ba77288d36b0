package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/opsroster/internal/persistence"
)

// EmployeeRepository implements persistence.EmployeeRepository on SQLite.
type EmployeeRepository struct {
	storage *Storage
}

// NewEmployeeRepository binds the repository to the shared storage.
func NewEmployeeRepository(storage *Storage) *EmployeeRepository {
	return &EmployeeRepository{storage: storage}
}

// CreateEmployee inserts a new employee record.
func (r *EmployeeRepository) CreateEmployee(ctx context.Context, employee persistence.Employee) error {
	if employee.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now

	query := `
		INSERT INTO employees (id, display_name, availability, skills, seniority_rank,
			department_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.storage.db.ExecContext(ctx, query,
		employee.ID,
		employee.DisplayName,
		encodeAvailability(employee.Availability),
		encodeStrings(employee.Skills),
		employee.SeniorityRank,
		encodeStrings(employee.DepartmentIDs),
		formatTime(employee.CreatedAt),
		formatTime(employee.UpdatedAt),
	)
	return mapError(err)
}

// GetEmployee fetches an employee by id.
func (r *EmployeeRepository) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	row := r.storage.db.QueryRowContext(ctx, selectEmployeeQuery+" WHERE id = ?", id)
	employee, err := scanEmployee(row)
	if err != nil {
		return persistence.Employee{}, mapError(err)
	}
	return employee, nil
}

// ListEligibleEmployees returns employees belonging to the department, or
// every employee when departmentID is empty. Department membership is stored
// as a JSON array, so the filter is applied after decoding.
func (r *EmployeeRepository) ListEligibleEmployees(ctx context.Context, departmentID string) ([]persistence.Employee, error) {
	rows, err := r.storage.db.QueryContext(ctx, selectEmployeeQuery+" ORDER BY id")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	employees := make([]persistence.Employee, 0)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan employee: %w", err)
		}
		if departmentID != "" && !memberOf(employee.DepartmentIDs, departmentID) {
			continue
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

const selectEmployeeQuery = `
	SELECT id, display_name, availability, skills, seniority_rank, department_ids,
		created_at, updated_at
	FROM employees
`

func scanEmployee(row rowScanner) (persistence.Employee, error) {
	var (
		employee             persistence.Employee
		availability         sql.NullString
		skills               string
		departmentIDs        string
		createdAt, updatedAt string
	)

	err := row.Scan(
		&employee.ID,
		&employee.DisplayName,
		&availability,
		&skills,
		&employee.SeniorityRank,
		&departmentIDs,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Employee{}, err
	}

	employee.Availability = decodeAvailability(availability)
	employee.Skills = decodeStrings(skills)
	employee.DepartmentIDs = decodeStrings(departmentIDs)

	if employee.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Employee{}, err
	}
	if employee.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Employee{}, err
	}

	return employee, nil
}

func memberOf(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
