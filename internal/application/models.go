package application

import (
	"time"

	"github.com/example/opsroster/internal/persistence"
	"github.com/example/opsroster/internal/recurrence"
	"github.com/example/opsroster/internal/scheduler"
	"github.com/example/opsroster/internal/scoring"
	"github.com/example/opsroster/internal/urgency"
)

// MaterializationParams configures one materialization run.
type MaterializationParams struct {
	// HorizonDays bounds the expansion window, [now, now+HorizonDays).
	HorizonDays int
	// Timezone is the canonical IANA timezone for the run. Empty means UTC.
	Timezone string
}

// MaterializationResult aggregates the per-item outcomes of a run. Individual
// routine failures are counted here rather than aborting the batch.
type MaterializationResult struct {
	RoutinesProcessed int `json:"routines_processed"`
	Created           int `json:"created"`
	Skipped           int `json:"skipped"`
	Failed            int `json:"failed"`
}

// RefreshResult aggregates the outcomes of an urgency refresh pass.
type RefreshResult struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// ShiftDetails is the caller-facing view of the shift being filled.
type ShiftDetails struct {
	ID             string    `json:"id"`
	DepartmentID   string    `json:"department_id,omitempty"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	RequiredSkills []string  `json:"required_skills,omitempty"`
}

// Recommendation is the ranked suggestion list for one open shift.
type Recommendation struct {
	Shift       ShiftDetails          `json:"shift"`
	Suggestions []scoring.ScoreResult `json:"suggestions"`
}

// WorkItemView is the caller-facing projection of a work item, carrying the
// derived urgency level alongside the raw score.
type WorkItemView struct {
	ID           string        `json:"id"`
	RoutineID    string        `json:"routine_id"`
	AreaID       string        `json:"area_id"`
	DueAt        time.Time     `json:"due_at"`
	Criticality  int           `json:"criticality"`
	Status       string        `json:"status"`
	UrgencyScore float64       `json:"urgency_score"`
	UrgencyLevel urgency.Level `json:"urgency_level"`
}

func ruleFromRoutine(routine persistence.Routine) recurrence.Rule {
	return recurrence.Rule{
		ID:            routine.ID,
		RoutineID:     routine.ID,
		Type:          recurrence.RuleType(routine.RuleType),
		TimeSlots:     routine.TimeSlots,
		Weekdays:      routine.Weekdays,
		IntervalWeeks: routine.IntervalWeeks,
		DayOfMonth:    routine.DayOfMonth,
		StartsOn:      routine.StartsOn,
		EndsOn:        routine.EndsOn,
	}
}

func candidateFromEmployee(employee persistence.Employee) scoring.Employee {
	var availability scheduler.AvailabilityRules
	if employee.Availability != nil {
		availability = make(scheduler.AvailabilityRules, len(employee.Availability))
		for day, ranges := range employee.Availability {
			windows := make([]scheduler.AvailabilityWindow, 0, len(ranges))
			for _, r := range ranges {
				windows = append(windows, scheduler.AvailabilityWindow{Start: r.Start, End: r.End})
			}
			availability[day] = windows
		}
	}

	return scoring.Employee{
		ID:            employee.ID,
		Availability:  availability,
		Skills:        employee.Skills,
		SeniorityRank: employee.SeniorityRank,
		DepartmentIDs: employee.DepartmentIDs,
	}
}

func candidateFromShift(shift persistence.Shift) scoring.ShiftCandidate {
	return scoring.ShiftCandidate{
		ID:             shift.ID,
		DepartmentID:   shift.DepartmentID,
		Start:          shift.Start,
		End:            shift.End,
		RequiredSkills: shift.RequiredSkills,
	}
}

func detailsFromShift(shift persistence.Shift) ShiftDetails {
	return ShiftDetails{
		ID:             shift.ID,
		DepartmentID:   shift.DepartmentID,
		Start:          shift.Start,
		End:            shift.End,
		RequiredSkills: shift.RequiredSkills,
	}
}

func viewFromWorkItem(item persistence.WorkItem) WorkItemView {
	return WorkItemView{
		ID:           item.ID,
		RoutineID:    item.RoutineID,
		AreaID:       item.AreaID,
		DueAt:        item.DueAt,
		Criticality:  item.Criticality,
		Status:       string(item.Status),
		UrgencyScore: item.UrgencyScore,
		UrgencyLevel: urgency.LevelForScore(item.UrgencyScore),
	}
}
