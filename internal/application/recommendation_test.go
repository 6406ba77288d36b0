package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/example/opsroster/internal/persistence"
)

type shiftCatalogStub struct {
	shifts map[string]persistence.Shift
	err    error
}

func (s *shiftCatalogStub) GetShift(ctx context.Context, id string) (persistence.Shift, error) {
	if s.err != nil {
		return persistence.Shift{}, s.err
	}
	shift, ok := s.shifts[id]
	if !ok {
		return persistence.Shift{}, persistence.ErrNotFound
	}
	return shift, nil
}

type employeeDirectoryStub struct {
	employees []persistence.Employee
	err       error

	queriedDepartment string
}

func (s *employeeDirectoryStub) ListEligibleEmployees(ctx context.Context, departmentID string) ([]persistence.Employee, error) {
	s.queriedDepartment = departmentID
	if s.err != nil {
		return nil, s.err
	}
	return s.employees, nil
}

type assignmentLedgerStub struct {
	assignments []persistence.Assignment
	err         error

	queriedWeekStart time.Time
	queriedWeekEnd   time.Time
}

func (s *assignmentLedgerStub) ListWeekAssignments(ctx context.Context, employeeIDs []string, weekStart, weekEnd time.Time) ([]persistence.Assignment, error) {
	s.queriedWeekStart = weekStart
	s.queriedWeekEnd = weekEnd
	if s.err != nil {
		return nil, s.err
	}
	return s.assignments, nil
}

func fullWeekAvailability() map[time.Weekday][]persistence.ClockRange {
	availability := make(map[time.Weekday][]persistence.ClockRange)
	for day := time.Sunday; day <= time.Saturday; day++ {
		availability[day] = []persistence.ClockRange{{Start: "00:00", End: "23:59"}}
	}
	return availability
}

func openShift() persistence.Shift {
	// Wednesday afternoon.
	return persistence.Shift{
		ID:             "shift-1",
		DepartmentID:   "dept-1",
		Start:          time.Date(2025, time.June, 4, 14, 0, 0, 0, time.UTC),
		End:            time.Date(2025, time.June, 4, 22, 0, 0, 0, time.UTC),
		RequiredSkills: []string{"forklift"},
	}
}

func TestRecommendationService_SuggestRanksCandidates(t *testing.T) {
	t.Parallel()

	shift := openShift()
	shifts := &shiftCatalogStub{shifts: map[string]persistence.Shift{shift.ID: shift}}
	employees := &employeeDirectoryStub{employees: []persistence.Employee{
		{
			ID:            "emp-junior",
			Availability:  fullWeekAvailability(),
			Skills:        []string{"forklift"},
			SeniorityRank: 2,
			DepartmentIDs: []string{"dept-1"},
		},
		{
			ID:            "emp-senior",
			Availability:  fullWeekAvailability(),
			Skills:        []string{"forklift"},
			SeniorityRank: 9,
			DepartmentIDs: []string{"dept-1"},
		},
	}}
	ledger := &assignmentLedgerStub{}

	service := NewRecommendationService(shifts, employees, ledger, zerolog.Nop())

	recommendation, err := service.Suggest(context.Background(), shift.ID)
	require.NoError(t, err)
	require.Equal(t, shift.ID, recommendation.Shift.ID)
	require.Equal(t, "dept-1", employees.queriedDepartment)

	require.Len(t, recommendation.Suggestions, 2)
	require.Equal(t, "emp-senior", recommendation.Suggestions[0].EmployeeID)
	require.Equal(t, "emp-junior", recommendation.Suggestions[1].EmployeeID)
	require.Greater(t, recommendation.Suggestions[0].Score, recommendation.Suggestions[1].Score)
}

func TestRecommendationService_SuggestBlocksOverlappingCandidate(t *testing.T) {
	t.Parallel()

	shift := openShift()
	shifts := &shiftCatalogStub{shifts: map[string]persistence.Shift{shift.ID: shift}}
	employees := &employeeDirectoryStub{employees: []persistence.Employee{
		{
			ID:            "emp-busy",
			Availability:  fullWeekAvailability(),
			Skills:        []string{"forklift"},
			SeniorityRank: 10,
			DepartmentIDs: []string{"dept-1"},
		},
		{
			ID:            "emp-free",
			Availability:  fullWeekAvailability(),
			Skills:        nil,
			SeniorityRank: 1,
			DepartmentIDs: []string{"dept-1"},
		},
	}}
	ledger := &assignmentLedgerStub{assignments: []persistence.Assignment{
		{
			ID:         "assign-1",
			EmployeeID: "emp-busy",
			ShiftID:    "shift-existing",
			Start:      shift.Start.Add(-2 * time.Hour),
			End:        shift.Start.Add(2 * time.Hour),
		},
	}}

	service := NewRecommendationService(shifts, employees, ledger, zerolog.Nop())

	recommendation, err := service.Suggest(context.Background(), shift.ID)
	require.NoError(t, err)
	require.Len(t, recommendation.Suggestions, 2)

	// The overlapping candidate drops to zero and ranks behind the weaker
	// but free candidate.
	require.Equal(t, "emp-free", recommendation.Suggestions[0].EmployeeID)
	require.Equal(t, "emp-busy", recommendation.Suggestions[1].EmployeeID)
	require.Zero(t, recommendation.Suggestions[1].Score)
	require.NotEmpty(t, recommendation.Suggestions[1].Conflicts)
}

func TestRecommendationService_SuggestQueriesShiftWeek(t *testing.T) {
	t.Parallel()

	shift := openShift()
	shifts := &shiftCatalogStub{shifts: map[string]persistence.Shift{shift.ID: shift}}
	employees := &employeeDirectoryStub{employees: []persistence.Employee{
		{ID: "emp-1", DepartmentIDs: []string{"dept-1"}},
	}}
	ledger := &assignmentLedgerStub{}

	service := NewRecommendationService(shifts, employees, ledger, zerolog.Nop())

	_, err := service.Suggest(context.Background(), shift.ID)
	require.NoError(t, err)

	// Shift falls on Wednesday June 4th; its ISO week starts Monday June 2nd.
	require.Equal(t, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), ledger.queriedWeekStart)
	require.Equal(t, time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC), ledger.queriedWeekEnd)
}

func TestRecommendationService_SuggestUnknownShift(t *testing.T) {
	t.Parallel()

	service := NewRecommendationService(
		&shiftCatalogStub{shifts: map[string]persistence.Shift{}},
		&employeeDirectoryStub{},
		&assignmentLedgerStub{},
		zerolog.Nop(),
	)

	_, err := service.Suggest(context.Background(), "shift-missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecommendationService_SuggestValidatesShiftID(t *testing.T) {
	t.Parallel()

	service := NewRecommendationService(
		&shiftCatalogStub{},
		&employeeDirectoryStub{},
		&assignmentLedgerStub{},
		zerolog.Nop(),
	)

	_, err := service.Suggest(context.Background(), "")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.FieldErrors, "shift_id")
}

func TestRecommendationService_SuggestStorageFailures(t *testing.T) {
	t.Parallel()

	shift := openShift()
	boom := errors.New("storage down")

	t.Run("employee listing", func(t *testing.T) {
		t.Parallel()
		service := NewRecommendationService(
			&shiftCatalogStub{shifts: map[string]persistence.Shift{shift.ID: shift}},
			&employeeDirectoryStub{err: boom},
			&assignmentLedgerStub{},
			zerolog.Nop(),
		)
		_, err := service.Suggest(context.Background(), shift.ID)
		require.ErrorIs(t, err, boom)
	})

	t.Run("assignment listing", func(t *testing.T) {
		t.Parallel()
		service := NewRecommendationService(
			&shiftCatalogStub{shifts: map[string]persistence.Shift{shift.ID: shift}},
			&employeeDirectoryStub{employees: []persistence.Employee{{ID: "emp-1"}}},
			&assignmentLedgerStub{err: boom},
			zerolog.Nop(),
		)
		_, err := service.Suggest(context.Background(), shift.ID)
		require.ErrorIs(t, err, boom)
	})
}
