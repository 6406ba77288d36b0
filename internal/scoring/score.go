// Package scoring ranks candidate employees for an open shift using a
// weighted multi-factor fitness score.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/example/opsroster/internal/scheduler"
)

// Component score ceilings. The total of all ceilings is 100.
const (
	availabilityFullScore    = 30
	availabilityNoRulesScore = 20
	availabilityPartialScore = 10
	skillsFullScore          = 25
	hoursFullScore           = 20
	hoursStretchedScore      = 15
	hoursOvertimeScore       = 5
	seniorityFullScore       = 15
	departmentFullScore      = 10
)

const (
	preferredWeeklyHours = 35.0
	maxWeeklyHours       = 40.0
)

// Employee is the read-only candidate record handed to scoring. Availability
// is nil when the employee has declared no rules.
type Employee struct {
	ID            string
	Availability  scheduler.AvailabilityRules
	Skills        []string
	SeniorityRank float64
	DepartmentIDs []string
}

// ShiftCandidate is the open shift being filled.
type ShiftCandidate struct {
	ID             string
	DepartmentID   string
	Start          time.Time
	End            time.Time
	RequiredSkills []string
}

// ExistingAssignment is one shift the employee already holds in the scoring
// week. The slice passed to ScoreEmployee is a snapshot for the duration of
// one pass.
type ExistingAssignment struct {
	EmployeeID string
	ShiftID    string
	Start      time.Time
	End        time.Time
}

// ComponentScores breaks the total down by factor for explainability.
type ComponentScores struct {
	Availability int `json:"availability"`
	Skills       int `json:"skills"`
	Hours        int `json:"hours"`
	Seniority    int `json:"seniority"`
	Department   int `json:"department"`
}

// ScoreResult is the scored outcome for one candidate. A blocked candidate
// carries Score 0 and the blocking conflicts.
type ScoreResult struct {
	EmployeeID string          `json:"employee_id"`
	Score      int             `json:"score"`
	Components ComponentScores `json:"component_scores"`
	Warnings   []string        `json:"warnings,omitempty"`
	Conflicts  []string        `json:"conflicts,omitempty"`
}

// ScoreEmployee evaluates one employee against one shift given the
// employee's existing assignments for that week. It is deterministic and
// never fails: malformed candidate data degrades to neutral component
// defaults instead of aborting the pass.
//
// If the candidate shift together with the week's assignments produces an
// overlap or rest violation, the score is forced to 0 regardless of the
// component totals; a blocked candidate must never outrank an unblocked one.
func ScoreEmployee(emp Employee, shift ShiftCandidate, weekAssignments []ExistingAssignment) ScoreResult {
	result := ScoreResult{EmployeeID: emp.ID}

	result.Components.Availability = scoreAvailability(emp, shift, &result.Warnings)
	result.Components.Skills = scoreSkills(emp, shift, &result.Warnings)
	result.Components.Hours = scoreHours(shift, weekAssignments, &result.Warnings)
	result.Components.Seniority = scoreSeniority(emp)
	result.Components.Department = scoreDepartment(emp, shift, &result.Warnings)

	result.Score = result.Components.Availability +
		result.Components.Skills +
		result.Components.Hours +
		result.Components.Seniority +
		result.Components.Department

	for _, conflict := range blockingConflicts(emp, shift, weekAssignments) {
		result.Conflicts = append(result.Conflicts, conflict.Message)
	}
	if len(result.Conflicts) > 0 {
		result.Score = 0
	}

	return result
}

// Rank orders results descending by score, breaking ties by employee id so
// repeated runs over the same snapshot produce identical orderings.
func Rank(results []ScoreResult) []ScoreResult {
	ordered := make([]ScoreResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score == ordered[j].Score {
			return ordered[i].EmployeeID < ordered[j].EmployeeID
		}
		return ordered[i].Score > ordered[j].Score
	})
	return ordered
}

func scoreAvailability(emp Employee, shift ShiftCandidate, warnings *[]string) int {
	if emp.Availability == nil || !emp.Availability.HasValidWindows() {
		// No declared rules, or rules too malformed to evaluate: neither
		// counts against the candidate.
		return availabilityNoRulesScore
	}
	if scheduler.RangeCovered(emp.Availability, shift.Start, shift.End) {
		return availabilityFullScore
	}
	*warnings = append(*warnings, "Outside preferred availability")
	return availabilityPartialScore
}

func scoreSkills(emp Employee, shift ShiftCandidate, warnings *[]string) int {
	required := normalizeSkills(shift.RequiredSkills)
	if len(required) == 0 {
		return skillsFullScore
	}

	held := make(map[string]struct{}, len(emp.Skills))
	for _, skill := range normalizeSkills(emp.Skills) {
		held[skill] = struct{}{}
	}

	matched := 0
	for _, skill := range required {
		if _, ok := held[skill]; ok {
			matched++
		}
	}

	if missing := len(required) - matched; missing > 0 {
		*warnings = append(*warnings, fmt.Sprintf("Missing %d required skill(s)", missing))
	}

	ratio := float64(matched) / float64(len(required))
	return int(math.Round(skillsFullScore * ratio))
}

func scoreHours(shift ShiftCandidate, weekAssignments []ExistingAssignment, warnings *[]string) int {
	existing := 0.0
	for _, assignment := range weekAssignments {
		existing += assignment.End.Sub(assignment.Start).Hours()
	}
	projected := existing + shift.End.Sub(shift.Start).Hours()

	switch {
	case projected > maxWeeklyHours:
		*warnings = append(*warnings, fmt.Sprintf("Projected %.1f weekly hours exceed the %.0f hour overtime limit", projected, maxWeeklyHours))
		return hoursOvertimeScore
	case projected > preferredWeeklyHours:
		return hoursStretchedScore
	default:
		return hoursFullScore
	}
}

func scoreSeniority(emp Employee) int {
	rank := emp.SeniorityRank
	if rank < 0 {
		rank = 0
	}
	score := rank / 10 * seniorityFullScore
	if score > seniorityFullScore {
		score = seniorityFullScore
	}
	return int(math.Round(score))
}

func scoreDepartment(emp Employee, shift ShiftCandidate, warnings *[]string) int {
	if shift.DepartmentID == "" {
		return departmentFullScore
	}
	for _, departmentID := range emp.DepartmentIDs {
		if departmentID == shift.DepartmentID {
			return departmentFullScore
		}
	}
	*warnings = append(*warnings, "Not a member of the shift's department")
	return 0
}

// blockingConflicts runs the shared conflict detection over the candidate
// shift plus the week's assignments and keeps only the critical tier.
func blockingConflicts(emp Employee, shift ShiftCandidate, weekAssignments []ExistingAssignment) []scheduler.Conflict {
	shifts := make([]scheduler.ShiftInstance, 0, len(weekAssignments)+1)
	for _, assignment := range weekAssignments {
		shifts = append(shifts, scheduler.ShiftInstance{
			ID:         assignment.ShiftID,
			EmployeeID: emp.ID,
			Start:      assignment.Start,
			End:        assignment.End,
		})
	}
	shifts = append(shifts, scheduler.ShiftInstance{
		ID:         shift.ID,
		EmployeeID: emp.ID,
		Start:      shift.Start,
		End:        shift.End,
	})

	critical := make([]scheduler.Conflict, 0)
	for _, conflict := range scheduler.DetectForEmployee(shifts, nil) {
		if scheduler.SeverityFor(conflict.Type) == scheduler.SeverityCritical {
			critical = append(critical, conflict)
		}
	}
	return critical
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill != "" {
			out = append(out, skill)
		}
	}
	return out
}
