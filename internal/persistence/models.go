package persistence

import "time"

// Routine is a template describing recurring work plus its recurrence
// configuration. Routines are superseded, never mutated mid-run: the
// materializer reads a snapshot of the active set.
type Routine struct {
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

// WorkItemStatus tracks the lifecycle of a materialized work item. Status
// transitions are owned by the calling application, not by the engine.
type WorkItemStatus string

const (
	// StatusPending marks an item awaiting completion.
	StatusPending WorkItemStatus = "pending"
	// StatusDone marks a completed item.
	StatusDone WorkItemStatus = "done"
	// StatusSkipped marks an item explicitly skipped by an operator.
	StatusSkipped WorkItemStatus = "skipped"
	// StatusMissed marks an item whose window elapsed without completion.
	StatusMissed WorkItemStatus = "missed"
)

// WorkItem is one concrete instance materialized from a routine. The triple
// (RoutineID, AreaID, DueAt) is the natural key making re-materialization
// idempotent.
type WorkItem struct {
	ID           string
	RoutineID    string
	AreaID       string
	DueAt        time.Time
	WindowStart  *time.Time
	WindowEnd    *time.Time
	Criticality  int
	Status       WorkItemStatus
	UrgencyScore float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ClockRange is a within-day availability range in "HH:MM" notation.
type ClockRange struct {
	Start string
	End   string
}

// Employee is a read-only scoring input. Availability is nil when the
// employee has declared no rules; a stored record whose availability cannot
// be decoded is also surfaced with nil rules rather than failing the read.
type Employee struct {
	ID            string
	DisplayName   string
	Availability  map[time.Weekday][]ClockRange
	Skills        []string
	SeniorityRank float64
	DepartmentIDs []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Shift is an open or assigned shift slot.
type Shift struct {
	ID             string
	DepartmentID   string
	Start          time.Time
	End            time.Time
	RequiredSkills []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Assignment records an employee holding a shift. Scoring reads these as a
// snapshot to compute weekly load and rest/overlap conflicts.
type Assignment struct {
	ID         string
	EmployeeID string
	ShiftID    string
	Start      time.Time
	End        time.Time
	CreatedAt  time.Time
}
