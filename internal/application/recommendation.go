package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/opsroster/internal/logging"
	"github.com/example/opsroster/internal/persistence"
	"github.com/example/opsroster/internal/scoring"
)

// ShiftCatalog exposes shift lookup.
type ShiftCatalog interface {
	GetShift(ctx context.Context, id string) (persistence.Shift, error)
}

// EmployeeDirectory exposes candidate lookup.
type EmployeeDirectory interface {
	ListEligibleEmployees(ctx context.Context, departmentID string) ([]persistence.Employee, error)
}

// AssignmentLedger exposes the existing-assignment snapshot used for load and
// conflict computation.
type AssignmentLedger interface {
	ListWeekAssignments(ctx context.Context, employeeIDs []string, weekStart, weekEnd time.Time) ([]persistence.Assignment, error)
}

// RecommendationService ranks candidate employees for an open shift. It reads
// a snapshot from storage, scores synchronously, and returns the ranked list;
// persisting a chosen assignment stays with the caller.
type RecommendationService struct {
	shifts      ShiftCatalog
	employees   EmployeeDirectory
	assignments AssignmentLedger
	logger      zerolog.Logger
}

// NewRecommendationService wires dependencies for suggestion requests.
func NewRecommendationService(shifts ShiftCatalog, employees EmployeeDirectory, assignments AssignmentLedger, logger zerolog.Logger) *RecommendationService {
	return &RecommendationService{
		shifts:      shifts,
		employees:   employees,
		assignments: assignments,
		logger:      logger,
	}
}

// Suggest scores every eligible employee against the shift and returns the
// ranked results. Candidates with partially bad records degrade to neutral
// component defaults; only a missing shift or a storage failure fails the
// request.
func (s *RecommendationService) Suggest(ctx context.Context, shiftID string) (Recommendation, error) {
	if s == nil || s.shifts == nil || s.employees == nil {
		return Recommendation{}, fmt.Errorf("recommendation service not configured")
	}
	if shiftID == "" {
		vErr := &ValidationError{}
		vErr.add("shift_id", "shift id is required")
		return Recommendation{}, vErr
	}

	logger := logging.FromContext(ctx, s.logger).With().
		Str("service", "recommendation").
		Str("shift_id", shiftID).
		Logger()

	shift, err := s.shifts.GetShift(ctx, shiftID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Recommendation{}, ErrNotFound
		}
		return Recommendation{}, fmt.Errorf("get shift: %w", err)
	}

	employees, err := s.employees.ListEligibleEmployees(ctx, shift.DepartmentID)
	if err != nil {
		return Recommendation{}, fmt.Errorf("list eligible employees: %w", err)
	}

	assignmentsByEmployee, err := s.weekAssignments(ctx, employees, shift)
	if err != nil {
		return Recommendation{}, err
	}

	candidate := candidateFromShift(shift)
	results := make([]scoring.ScoreResult, 0, len(employees))
	for _, employee := range employees {
		results = append(results, scoring.ScoreEmployee(
			candidateFromEmployee(employee),
			candidate,
			assignmentsByEmployee[employee.ID],
		))
	}

	ranked := scoring.Rank(results)
	logger.Debug().Int("candidates", len(ranked)).Msg("suggestions computed")

	return Recommendation{Shift: detailsFromShift(shift), Suggestions: ranked}, nil
}

func (s *RecommendationService) weekAssignments(ctx context.Context, employees []persistence.Employee, shift persistence.Shift) (map[string][]scoring.ExistingAssignment, error) {
	if s.assignments == nil || len(employees) == 0 {
		return nil, nil
	}

	ids := make([]string, len(employees))
	for i, employee := range employees {
		ids[i] = employee.ID
	}

	weekStart := startOfISOWeek(shift.Start)
	weekEnd := weekStart.AddDate(0, 0, 7)

	assignments, err := s.assignments.ListWeekAssignments(ctx, ids, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("list week assignments: %w", err)
	}

	byEmployee := make(map[string][]scoring.ExistingAssignment, len(assignments))
	for _, assignment := range assignments {
		byEmployee[assignment.EmployeeID] = append(byEmployee[assignment.EmployeeID], scoring.ExistingAssignment{
			EmployeeID: assignment.EmployeeID,
			ShiftID:    assignment.ShiftID,
			Start:      assignment.Start,
			End:        assignment.End,
		})
	}
	return byEmployee, nil
}

// startOfISOWeek returns midnight of the Monday beginning the ISO week that
// contains t, in t's location.
func startOfISOWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	// In Go, Monday == 1 and Sunday == 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
