package persistence

import (
	"context"
	"time"
)

// InsertOutcome reports how an idempotent insert resolved.
type InsertOutcome string

const (
	// OutcomeCreated means a new record was written.
	OutcomeCreated InsertOutcome = "created"
	// OutcomeDuplicate means the natural key already existed and the
	// insert was a no-op.
	OutcomeDuplicate InsertOutcome = "duplicate"
)

// RoutineRepository stores routine templates.
type RoutineRepository interface {
	CreateRoutine(ctx context.Context, routine Routine) error
	GetRoutine(ctx context.Context, id string) (Routine, error)
	ListActiveRoutines(ctx context.Context) ([]Routine, error)
	DeactivateRoutine(ctx context.Context, id string, at time.Time) error
}

// WorkItemFilter narrows work item queries.
type WorkItemFilter struct {
	Status    *WorkItemStatus
	DueAfter  *time.Time
	DueBefore *time.Time
}

// WorkItemRepository stores materialized work items.
type WorkItemRepository interface {
	// InsertWorkItemIfAbsent writes the item unless its natural key
	// (routine, area, due time) already exists, in which case it reports
	// OutcomeDuplicate without error.
	InsertWorkItemIfAbsent(ctx context.Context, item WorkItem) (InsertOutcome, error)
	GetWorkItem(ctx context.Context, id string) (WorkItem, error)
	ListWorkItems(ctx context.Context, filter WorkItemFilter) ([]WorkItem, error)
	UpdateUrgencyScore(ctx context.Context, id string, score float64, at time.Time) error
	UpdateStatus(ctx context.Context, id string, status WorkItemStatus, at time.Time) error
}

// EmployeeRepository stores employee records.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee Employee) error
	GetEmployee(ctx context.Context, id string) (Employee, error)
	// ListEligibleEmployees returns employees eligible for the department.
	// An empty departmentID returns every employee.
	ListEligibleEmployees(ctx context.Context, departmentID string) ([]Employee, error)
}

// ShiftRepository stores shift slots.
type ShiftRepository interface {
	CreateShift(ctx context.Context, shift Shift) error
	GetShift(ctx context.Context, id string) (Shift, error)
}

// AssignmentRepository stores employee-to-shift assignments.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, assignment Assignment) error
	// ListWeekAssignments returns the assignments for the given employees
	// whose start falls within [weekStart, weekEnd).
	ListWeekAssignments(ctx context.Context, employeeIDs []string, weekStart, weekEnd time.Time) ([]Assignment, error)
}
