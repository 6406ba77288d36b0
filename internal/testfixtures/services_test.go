package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/opsroster/internal/application"
	"github.com/example/opsroster/internal/persistence"
)

func TestServiceFactoryMaterializesAgainstSQLite(t *testing.T) {
	harness := NewSQLiteHarness(t)
	ctx := context.Background()

	routine := NewRoutineFixture(
		WithRoutineAreas("area-001", "area-002"),
		WithRoutineCriticality(4),
	)
	require.NoError(t, harness.Routines.CreateRoutine(ctx, routine.Persistence()))

	factory := NewServiceFactory(WithIDGenerator(NewIDGenerator("item")))
	service := factory.NewMaterializationService(MaterializationDeps{
		Routines:  harness.Routines,
		WorkItems: harness.WorkItems,
	})

	result, err := service.Run(ctx, application.MaterializationParams{HorizonDays: 3})
	require.NoError(t, err)
	// 3 days x 1 slot x 2 areas.
	require.Equal(t, 6, result.Created)
	require.Equal(t, 0, result.Failed)

	// Re-running against the same storage must not duplicate anything.
	again, err := service.Run(ctx, application.MaterializationParams{HorizonDays: 3})
	require.NoError(t, err)
	require.Equal(t, 0, again.Created)
	require.Equal(t, 6, again.Skipped)

	pending := persistence.StatusPending
	items, err := harness.WorkItems.ListWorkItems(ctx, persistence.WorkItemFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, items, 6)
}

func TestServiceFactoryMaterializesRoutineWithoutAreas(t *testing.T) {
	harness := NewSQLiteHarness(t)
	ctx := context.Background()

	routine := NewRoutineFixture(WithRoutineAreas())
	require.NoError(t, harness.Routines.CreateRoutine(ctx, routine.Persistence()))

	factory := NewServiceFactory(WithIDGenerator(NewIDGenerator("item")))
	service := factory.NewMaterializationService(MaterializationDeps{
		Routines:  harness.Routines,
		WorkItems: harness.WorkItems,
	})

	result, err := service.Run(ctx, application.MaterializationParams{HorizonDays: 3})
	require.NoError(t, err)
	// One item per slot, under the empty area sentinel.
	require.Equal(t, 3, result.Created)
	require.Equal(t, 0, result.Failed)

	items, err := harness.WorkItems.ListWorkItems(ctx, persistence.WorkItemFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		require.Empty(t, item.AreaID)
	}
}

func TestServiceFactorySuggestsAgainstSQLite(t *testing.T) {
	harness := NewSQLiteHarness(t)
	ctx := context.Background()

	shift := NewShiftFixture(WithShiftSkills("forklift"))
	require.NoError(t, harness.Shifts.CreateShift(ctx, shift.Persistence()))

	skilled := NewEmployeeFixture(
		WithEmployeeSkills("forklift"),
		WithEmployeeSeniority(8),
	)
	unskilled := NewEmployeeFixture(WithEmployeeSeniority(2))
	require.NoError(t, harness.Employees.CreateEmployee(ctx, skilled.Persistence()))
	require.NoError(t, harness.Employees.CreateEmployee(ctx, unskilled.Persistence()))

	// An assignment overlapping the open shift hard-blocks its holder. The
	// held shift must exist: assignments carry a foreign key to shifts.
	held := NewShiftFixture(WithShiftTimes(shift.Start.Add(-time.Hour), shift.Start.Add(time.Hour)))
	require.NoError(t, harness.Shifts.CreateShift(ctx, held.Persistence()))
	require.NoError(t, harness.Assignments.CreateAssignment(ctx, persistence.Assignment{
		ID:         "assign-001",
		EmployeeID: unskilled.ID,
		ShiftID:    held.ID,
		Start:      held.Start,
		End:        held.End,
		CreatedAt:  ReferenceTime(),
	}))

	factory := NewServiceFactory()
	service := factory.NewRecommendationService(RecommendationDeps{
		Shifts:      harness.Shifts,
		Employees:   harness.Employees,
		Assignments: harness.Assignments,
	})

	recommendation, err := service.Suggest(ctx, shift.ID)
	require.NoError(t, err)
	require.Len(t, recommendation.Suggestions, 2)
	require.Equal(t, skilled.ID, recommendation.Suggestions[0].EmployeeID)
	require.Equal(t, unskilled.ID, recommendation.Suggestions[1].EmployeeID)
	require.Zero(t, recommendation.Suggestions[1].Score)
}
