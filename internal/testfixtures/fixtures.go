package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/opsroster/internal/persistence"
)

var (
	routineCounter  uint64
	employeeCounter uint64
	shiftCounter    uint64
	workItemCounter uint64
)

var referenceTime = time.Date(2025, time.June, 2, 6, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures. It
// falls on a Monday so week-based expectations stay easy to reason about.
func ReferenceTime() time.Time {
	return referenceTime
}

// --------------------------- Routine fixtures ----------------------------

// RoutineFixture represents a deterministic routine record that can be
// materialised for application or persistence tests.
type RoutineFixture struct {
	ID            string
	Name          string
	DepartmentID  string
	AreaIDs       []string
	Criticality   int
	RuleType      string
	TimeSlots     []string
	Weekdays      []time.Weekday
	IntervalWeeks int
	DayOfMonth    int
	StartsOn      *time.Time
	EndsOn        *time.Time
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RoutineOption configures the generated routine fixture.
type RoutineOption func(*RoutineFixture)

// NewRoutineFixture returns a deterministic daily routine with optional
// overrides.
func NewRoutineFixture(opts ...RoutineOption) RoutineFixture {
	idx := atomic.AddUint64(&routineCounter, 1)
	id := fmt.Sprintf("routine-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := RoutineFixture{
		ID:           id,
		Name:         fmt.Sprintf("Routine %03d", idx),
		DepartmentID: "dept-001",
		AreaIDs:      []string{"area-001"},
		Criticality:  3,
		RuleType:     "daily",
		TimeSlots:    []string{"08:00"},
		Active:       true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoutineID overrides the generated routine ID.
func WithRoutineID(id string) RoutineOption {
	return func(f *RoutineFixture) {
		f.ID = id
	}
}

// WithRoutineAreas overrides the area list.
func WithRoutineAreas(areaIDs ...string) RoutineOption {
	return func(f *RoutineFixture) {
		f.AreaIDs = areaIDs
	}
}

// WithRoutineCriticality overrides the criticality tier.
func WithRoutineCriticality(criticality int) RoutineOption {
	return func(f *RoutineFixture) {
		f.Criticality = criticality
	}
}

// WithRoutineRule replaces the recurrence rule fields in one stroke.
func WithRoutineRule(ruleType string, slots []string, weekdays []time.Weekday) RoutineOption {
	return func(f *RoutineFixture) {
		f.RuleType = ruleType
		f.TimeSlots = slots
		f.Weekdays = weekdays
	}
}

// WithRoutineWindow bounds the routine to an effective window.
func WithRoutineWindow(startsOn, endsOn *time.Time) RoutineOption {
	return func(f *RoutineFixture) {
		f.StartsOn = startsOn
		f.EndsOn = endsOn
	}
}

// WithRoutineActive sets the active flag on the generated fixture.
func WithRoutineActive(active bool) RoutineOption {
	return func(f *RoutineFixture) {
		f.Active = active
	}
}

// Persistence returns the fixture as a persistence.Routine value.
func (f RoutineFixture) Persistence() persistence.Routine {
	return persistence.Routine{
		ID:            f.ID,
		Name:          f.Name,
		DepartmentID:  f.DepartmentID,
		AreaIDs:       f.AreaIDs,
		Criticality:   f.Criticality,
		RuleType:      f.RuleType,
		TimeSlots:     f.TimeSlots,
		Weekdays:      f.Weekdays,
		IntervalWeeks: f.IntervalWeeks,
		DayOfMonth:    f.DayOfMonth,
		StartsOn:      f.StartsOn,
		EndsOn:        f.EndsOn,
		Active:        f.Active,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// --------------------------- Employee fixtures ---------------------------

// EmployeeFixture represents a deterministic employee record.
type EmployeeFixture struct {
	ID            string
	Name          string
	DepartmentIDs []string
	Skills        []string
	SeniorityRank float64
	Availability  map[time.Weekday][]persistence.ClockRange
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EmployeeOption configures the generated employee fixture.
type EmployeeOption func(*EmployeeFixture)

// NewEmployeeFixture returns a deterministic employee available around the
// clock on every weekday, with optional overrides.
func NewEmployeeFixture(opts ...EmployeeOption) EmployeeFixture {
	idx := atomic.AddUint64(&employeeCounter, 1)
	id := fmt.Sprintf("emp-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)

	availability := make(map[time.Weekday][]persistence.ClockRange, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		availability[day] = []persistence.ClockRange{{Start: "00:00", End: "23:59"}}
	}

	fixture := EmployeeFixture{
		ID:            id,
		Name:          fmt.Sprintf("Employee %03d", idx),
		DepartmentIDs: []string{"dept-001"},
		SeniorityRank: float64(idx % 10),
		Availability:  availability,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEmployeeID overrides the generated employee ID.
func WithEmployeeID(id string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.ID = id
	}
}

// WithEmployeeDepartments overrides the department memberships.
func WithEmployeeDepartments(departmentIDs ...string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.DepartmentIDs = departmentIDs
	}
}

// WithEmployeeSkills overrides the skill list.
func WithEmployeeSkills(skills ...string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Skills = skills
	}
}

// WithEmployeeSeniority overrides the seniority rank.
func WithEmployeeSeniority(rank float64) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.SeniorityRank = rank
	}
}

// WithEmployeeAvailability replaces the availability rules. Passing nil
// models an employee whose stored availability could not be decoded.
func WithEmployeeAvailability(availability map[time.Weekday][]persistence.ClockRange) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Availability = availability
	}
}

// Persistence returns the fixture as a persistence.Employee value.
func (f EmployeeFixture) Persistence() persistence.Employee {
	return persistence.Employee{
		ID:            f.ID,
		DisplayName:   f.Name,
		DepartmentIDs: f.DepartmentIDs,
		Skills:        f.Skills,
		SeniorityRank: f.SeniorityRank,
		Availability:  f.Availability,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// ----------------------------- Shift fixtures ----------------------------

// ShiftFixture represents a deterministic open shift.
type ShiftFixture struct {
	ID             string
	DepartmentID   string
	Start          time.Time
	End            time.Time
	RequiredSkills []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ShiftOption configures the generated shift fixture.
type ShiftOption func(*ShiftFixture)

// NewShiftFixture returns a deterministic eight hour shift with optional
// overrides. Successive fixtures land on successive days.
func NewShiftFixture(opts ...ShiftOption) ShiftFixture {
	idx := atomic.AddUint64(&shiftCounter, 1)
	id := fmt.Sprintf("shift-%03d", idx)
	start := referenceTime.AddDate(0, 0, int(idx)).Add(8 * time.Hour)
	fixture := ShiftFixture{
		ID:           id,
		DepartmentID: "dept-001",
		Start:        start,
		End:          start.Add(8 * time.Hour),
		CreatedAt:    referenceTime,
		UpdatedAt:    referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithShiftID overrides the generated shift ID.
func WithShiftID(id string) ShiftOption {
	return func(f *ShiftFixture) {
		f.ID = id
	}
}

// WithShiftDepartment overrides the owning department.
func WithShiftDepartment(departmentID string) ShiftOption {
	return func(f *ShiftFixture) {
		f.DepartmentID = departmentID
	}
}

// WithShiftTimes overrides the shift window.
func WithShiftTimes(start, end time.Time) ShiftOption {
	return func(f *ShiftFixture) {
		f.Start = start
		f.End = end
	}
}

// WithShiftSkills overrides the required skills.
func WithShiftSkills(skills ...string) ShiftOption {
	return func(f *ShiftFixture) {
		f.RequiredSkills = skills
	}
}

// Persistence returns the fixture as a persistence.Shift value.
func (f ShiftFixture) Persistence() persistence.Shift {
	return persistence.Shift{
		ID:             f.ID,
		DepartmentID:   f.DepartmentID,
		Start:          f.Start,
		End:            f.End,
		RequiredSkills: f.RequiredSkills,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// --------------------------- Work item fixtures --------------------------

// WorkItemFixture represents a deterministic materialised work item.
type WorkItemFixture struct {
	ID           string
	RoutineID    string
	AreaID       string
	DueAt        time.Time
	Criticality  int
	Status       persistence.WorkItemStatus
	UrgencyScore float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WorkItemOption configures the generated work item fixture.
type WorkItemOption func(*WorkItemFixture)

// NewWorkItemFixture returns a deterministic pending work item with optional
// overrides.
func NewWorkItemFixture(opts ...WorkItemOption) WorkItemFixture {
	idx := atomic.AddUint64(&workItemCounter, 1)
	id := fmt.Sprintf("item-%03d", idx)
	fixture := WorkItemFixture{
		ID:          id,
		RoutineID:   "routine-001",
		AreaID:      "area-001",
		DueAt:       referenceTime.Add(time.Duration(idx) * time.Hour),
		Criticality: 3,
		Status:      persistence.StatusPending,
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithWorkItemRoutine overrides the natural key's routine component.
func WithWorkItemRoutine(routineID string) WorkItemOption {
	return func(f *WorkItemFixture) {
		f.RoutineID = routineID
	}
}

// WithWorkItemArea overrides the natural key's area component.
func WithWorkItemArea(areaID string) WorkItemOption {
	return func(f *WorkItemFixture) {
		f.AreaID = areaID
	}
}

// WithWorkItemDueAt overrides the due timestamp.
func WithWorkItemDueAt(dueAt time.Time) WorkItemOption {
	return func(f *WorkItemFixture) {
		f.DueAt = dueAt
	}
}

// WithWorkItemStatus overrides the lifecycle status.
func WithWorkItemStatus(status persistence.WorkItemStatus) WorkItemOption {
	return func(f *WorkItemFixture) {
		f.Status = status
	}
}

// Persistence returns the fixture as a persistence.WorkItem value.
func (f WorkItemFixture) Persistence() persistence.WorkItem {
	return persistence.WorkItem{
		ID:           f.ID,
		RoutineID:    f.RoutineID,
		AreaID:       f.AreaID,
		DueAt:        f.DueAt,
		Criticality:  f.Criticality,
		Status:       f.Status,
		UrgencyScore: f.UrgencyScore,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}
