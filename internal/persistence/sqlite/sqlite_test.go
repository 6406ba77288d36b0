package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/opsroster/internal/persistence"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()

	storage, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	require.NoError(t, storage.Migrate(context.Background()))
	return storage
}

func testRoutine(id string) persistence.Routine {
	return persistence.Routine{
		ID:           id,
		Name:         "Fridge temperature check",
		DepartmentID: "dept-kitchen",
		AreaIDs:      []string{"area-1", "area-2"},
		Criticality:  4,
		RuleType:     "daily",
		TimeSlots:    []string{"08:00", "20:00"},
		Active:       true,
	}
}

func TestRoutineRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	repo := NewRoutineRepository(storage)
	ctx := context.Background()

	require.NoError(t, repo.CreateRoutine(ctx, testRoutine("routine-1")))

	got, err := repo.GetRoutine(ctx, "routine-1")
	require.NoError(t, err)
	require.Equal(t, "Fridge temperature check", got.Name)
	require.Equal(t, []string{"area-1", "area-2"}, got.AreaIDs)
	require.Equal(t, []string{"08:00", "20:00"}, got.TimeSlots)
	require.True(t, got.Active)

	_, err = repo.GetRoutine(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestRoutineRepository_ListActiveExcludesDeactivated(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	repo := NewRoutineRepository(storage)
	ctx := context.Background()

	require.NoError(t, repo.CreateRoutine(ctx, testRoutine("routine-1")))
	require.NoError(t, repo.CreateRoutine(ctx, testRoutine("routine-2")))
	require.NoError(t, repo.DeactivateRoutine(ctx, "routine-2", time.Now()))

	active, err := repo.ListActiveRoutines(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "routine-1", active[0].ID)
}

func TestWorkItemRepository_InsertIfAbsent(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	routines := NewRoutineRepository(storage)
	items := NewWorkItemRepository(storage)
	ctx := context.Background()

	require.NoError(t, routines.CreateRoutine(ctx, testRoutine("routine-1")))

	dueAt := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)
	item := persistence.WorkItem{
		ID:          "item-1",
		RoutineID:   "routine-1",
		AreaID:      "area-1",
		DueAt:       dueAt,
		Criticality: 4,
		Status:      persistence.StatusPending,
	}

	outcome, err := items.InsertWorkItemIfAbsent(ctx, item)
	require.NoError(t, err)
	require.Equal(t, persistence.OutcomeCreated, outcome)

	// Same natural key with a different row id: benign duplicate.
	item.ID = "item-2"
	outcome, err = items.InsertWorkItemIfAbsent(ctx, item)
	require.NoError(t, err)
	require.Equal(t, persistence.OutcomeDuplicate, outcome)

	// Different area: a distinct natural key, created normally.
	item.ID = "item-3"
	item.AreaID = "area-2"
	outcome, err = items.InsertWorkItemIfAbsent(ctx, item)
	require.NoError(t, err)
	require.Equal(t, persistence.OutcomeCreated, outcome)

	listed, err := items.ListWorkItems(ctx, persistence.WorkItemFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 2)
}

func TestWorkItemRepository_AcceptsEmptySentinelArea(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	routines := NewRoutineRepository(storage)
	items := NewWorkItemRepository(storage)
	ctx := context.Background()

	routine := testRoutine("routine-1")
	routine.AreaIDs = nil
	require.NoError(t, routines.CreateRoutine(ctx, routine))

	// Routines without sub-locations write the empty area sentinel.
	item := persistence.WorkItem{
		ID:          "item-1",
		RoutineID:   "routine-1",
		AreaID:      "",
		DueAt:       time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC),
		Criticality: 4,
		Status:      persistence.StatusPending,
	}

	outcome, err := items.InsertWorkItemIfAbsent(ctx, item)
	require.NoError(t, err)
	require.Equal(t, persistence.OutcomeCreated, outcome)

	// The sentinel still participates in the natural key.
	item.ID = "item-2"
	outcome, err = items.InsertWorkItemIfAbsent(ctx, item)
	require.NoError(t, err)
	require.Equal(t, persistence.OutcomeDuplicate, outcome)

	stored, err := items.GetWorkItem(ctx, "item-1")
	require.NoError(t, err)
	require.Empty(t, stored.AreaID)
}

func TestWorkItemRepository_FilterAndUpdates(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	routines := NewRoutineRepository(storage)
	items := NewWorkItemRepository(storage)
	ctx := context.Background()

	require.NoError(t, routines.CreateRoutine(ctx, testRoutine("routine-1")))

	base := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"item-1", "item-2", "item-3"} {
		_, err := items.InsertWorkItemIfAbsent(ctx, persistence.WorkItem{
			ID:        id,
			RoutineID: "routine-1",
			AreaID:    "area-1",
			DueAt:     base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	require.NoError(t, items.UpdateStatus(ctx, "item-2", persistence.StatusDone, time.Now()))
	require.NoError(t, items.UpdateUrgencyScore(ctx, "item-1", 0.75, time.Now()))

	pending := persistence.StatusPending
	listed, err := items.ListWorkItems(ctx, persistence.WorkItemFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, "item-1", listed[0].ID)
	require.InDelta(t, 0.75, listed[0].UrgencyScore, 1e-9)

	require.ErrorIs(t, items.UpdateStatus(ctx, "missing", persistence.StatusDone, time.Now()), persistence.ErrNotFound)
}

func TestEmployeeRepository_AvailabilityRoundTrip(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	repo := NewEmployeeRepository(storage)
	ctx := context.Background()

	employee := persistence.Employee{
		ID:          "emp-1",
		DisplayName: "A. Nakamura",
		Availability: map[time.Weekday][]persistence.ClockRange{
			time.Monday: {{Start: "08:00", End: "16:00"}},
			time.Friday: {{Start: "10:00", End: "18:00"}},
		},
		Skills:        []string{"forklift"},
		SeniorityRank: 6,
		DepartmentIDs: []string{"dept-kitchen"},
	}
	require.NoError(t, repo.CreateEmployee(ctx, employee))

	got, err := repo.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.Equal(t, employee.Availability, got.Availability)
	require.Equal(t, employee.Skills, got.Skills)
}

func TestEmployeeRepository_MalformedAvailabilityDegradesToNil(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	repo := NewEmployeeRepository(storage)
	ctx := context.Background()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := storage.DB().ExecContext(ctx, `
		INSERT INTO employees (id, display_name, availability, skills, seniority_rank, department_ids, created_at, updated_at)
		VALUES ('emp-bad', 'Broken Record', 'not json at all', '[]', 0, '[]', ?, ?)
	`, now, now)
	require.NoError(t, err)

	got, err := repo.GetEmployee(ctx, "emp-bad")
	require.NoError(t, err)
	require.Nil(t, got.Availability)
}

func TestEmployeeRepository_ListEligibleFiltersByDepartment(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	repo := NewEmployeeRepository(storage)
	ctx := context.Background()

	require.NoError(t, repo.CreateEmployee(ctx, persistence.Employee{
		ID: "emp-1", DisplayName: "In", DepartmentIDs: []string{"dept-a"},
	}))
	require.NoError(t, repo.CreateEmployee(ctx, persistence.Employee{
		ID: "emp-2", DisplayName: "Out", DepartmentIDs: []string{"dept-b"},
	}))

	eligible, err := repo.ListEligibleEmployees(ctx, "dept-a")
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, "emp-1", eligible[0].ID)

	everyone, err := repo.ListEligibleEmployees(ctx, "")
	require.NoError(t, err)
	require.Len(t, everyone, 2)
}

func TestAssignmentRepository_ListWeekAssignments(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	employees := NewEmployeeRepository(storage)
	shifts := NewShiftRepository(storage)
	assignments := NewAssignmentRepository(storage)
	ctx := context.Background()

	require.NoError(t, employees.CreateEmployee(ctx, persistence.Employee{ID: "emp-1", DisplayName: "A"}))

	weekStart := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 7)

	makeShift := func(id string, start time.Time) {
		require.NoError(t, shifts.CreateShift(ctx, persistence.Shift{
			ID: id, Start: start, End: start.Add(8 * time.Hour),
		}))
		require.NoError(t, assignments.CreateAssignment(ctx, persistence.Assignment{
			ID: "assign-" + id, EmployeeID: "emp-1", ShiftID: id,
			Start: start, End: start.Add(8 * time.Hour),
		}))
	}

	makeShift("shift-in", weekStart.Add(9*time.Hour))
	makeShift("shift-out", weekEnd.Add(9*time.Hour))

	inWeek, err := assignments.ListWeekAssignments(ctx, []string{"emp-1"}, weekStart, weekEnd)
	require.NoError(t, err)
	require.Len(t, inWeek, 1)
	require.Equal(t, "shift-in", inWeek[0].ShiftID)

	none, err := assignments.ListWeekAssignments(ctx, nil, weekStart, weekEnd)
	require.NoError(t, err)
	require.Empty(t, none)
}
