// Package scheduler detects scheduling conflicts across shift instances.
package scheduler

import (
	"fmt"
	"sort"
	"time"
)

// MinRestGap is the minimum gap between two shifts before the pair counts as
// a rest violation.
const MinRestGap = 8 * time.Hour

// MaxWeeklyHours is the weekly assigned-hours ceiling before overtime is
// flagged.
const MaxWeeklyHours = 40.0

// ShiftInstance is one concrete shift assigned (or proposed) for an employee.
type ShiftInstance struct {
	ID         string
	EmployeeID string
	Start      time.Time
	End        time.Time
}

// ConflictType enumerates the detectable scheduling problems.
type ConflictType string

const (
	// ConflictOverlap marks two shifts for one employee with intersecting times.
	ConflictOverlap ConflictType = "overlap"
	// ConflictRestViolation marks consecutive shifts with less than MinRestGap between them.
	ConflictRestViolation ConflictType = "rest_violation"
	// ConflictOvertime marks a week whose assigned hours exceed MaxWeeklyHours.
	ConflictOvertime ConflictType = "overtime"
	// ConflictAvailability marks a shift outside the employee's declared availability.
	ConflictAvailability ConflictType = "availability"
)

// Severity groups conflict types for presentation. Detection itself stays
// severity-agnostic; this classification is the single policy every caller
// shares.
type Severity string

const (
	// SeverityCritical conflicts block an assignment outright.
	SeverityCritical Severity = "critical"
	// SeverityWarning conflicts are surfaced but do not block.
	SeverityWarning Severity = "warning"
)

// SeverityFor classifies a conflict type into the shared severity tiers.
func SeverityFor(t ConflictType) Severity {
	switch t {
	case ConflictOverlap, ConflictRestViolation:
		return SeverityCritical
	default:
		return SeverityWarning
	}
}

// Conflict describes one detected scheduling problem and the shifts involved.
type Conflict struct {
	Type     ConflictType
	Message  string
	ShiftIDs []string
}

// AvailabilityWindow is a within-day time range in "HH:MM" notation during
// which an employee has declared themselves available.
type AvailabilityWindow struct {
	Start string
	End   string
}

// AvailabilityRules maps weekdays to the employee's declared availability
// windows. An employee without an entry in the detector's availability map
// has no declared rules; absence of data is not unavailability.
type AvailabilityRules map[time.Weekday][]AvailabilityWindow

// Detect inspects every employee's shifts and returns the typed conflicts
// found for each, keyed by employee id. Availability checks run only for
// employees present in the availability map.
func Detect(shifts []ShiftInstance, availability map[string]AvailabilityRules) map[string][]Conflict {
	byEmployee := make(map[string][]ShiftInstance)
	for _, shift := range shifts {
		if shift.EmployeeID == "" {
			continue
		}
		byEmployee[shift.EmployeeID] = append(byEmployee[shift.EmployeeID], shift)
	}

	result := make(map[string][]Conflict, len(byEmployee))
	for employeeID, employeeShifts := range byEmployee {
		rules, hasRules := availability[employeeID]
		conflicts := detectForEmployee(employeeShifts, rules, hasRules)
		if len(conflicts) > 0 {
			result[employeeID] = conflicts
		}
	}
	return result
}

// DetectForEmployee evaluates one employee's shifts against the optional
// availability rules. It is the shared core used both by batch detection and
// by assignment scoring's hard-block check.
func DetectForEmployee(shifts []ShiftInstance, rules AvailabilityRules) []Conflict {
	return detectForEmployee(shifts, rules, rules != nil)
}

func detectForEmployee(shifts []ShiftInstance, rules AvailabilityRules, hasRules bool) []Conflict {
	ordered := make([]ShiftInstance, len(shifts))
	copy(ordered, shifts)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Start.Before(ordered[j].Start)
	})

	conflicts := make([]Conflict, 0)

	// Overlaps: pairwise over the sorted order so messages come out in a
	// stable order.
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if !ordered[j].Start.Before(ordered[i].End) {
				break
			}
			conflicts = append(conflicts, Conflict{
				Type:     ConflictOverlap,
				Message:  fmt.Sprintf("shifts %s and %s overlap", ordered[i].ID, ordered[j].ID),
				ShiftIDs: []string{ordered[i].ID, ordered[j].ID},
			})
		}
	}

	// Rest violations between consecutive shifts.
	for i := 1; i < len(ordered); i++ {
		gap := ordered[i].Start.Sub(ordered[i-1].End)
		if gap > 0 && gap < MinRestGap {
			conflicts = append(conflicts, Conflict{
				Type: ConflictRestViolation,
				Message: fmt.Sprintf("only %s of rest between shifts %s and %s",
					gap, ordered[i-1].ID, ordered[i].ID),
				ShiftIDs: []string{ordered[i-1].ID, ordered[i].ID},
			})
		}
	}

	conflicts = append(conflicts, detectOvertime(ordered)...)

	if hasRules {
		for _, shift := range ordered {
			if RangeCovered(rules, shift.Start, shift.End) {
				continue
			}
			conflicts = append(conflicts, Conflict{
				Type: ConflictAvailability,
				Message: fmt.Sprintf("shift %s is outside declared availability on %s",
					shift.ID, shift.Start.Weekday()),
				ShiftIDs: []string{shift.ID},
			})
		}
	}

	return conflicts
}

func detectOvertime(ordered []ShiftInstance) []Conflict {
	type weekKey struct {
		year int
		week int
	}

	hoursByWeek := make(map[weekKey]float64)
	shiftsByWeek := make(map[weekKey][]string)
	keys := make([]weekKey, 0)

	for _, shift := range ordered {
		year, week := shift.Start.ISOWeek()
		key := weekKey{year: year, week: week}
		if _, seen := hoursByWeek[key]; !seen {
			keys = append(keys, key)
		}
		hoursByWeek[key] += shift.End.Sub(shift.Start).Hours()
		shiftsByWeek[key] = append(shiftsByWeek[key], shift.ID)
	}

	conflicts := make([]Conflict, 0)
	for _, key := range keys {
		if hoursByWeek[key] <= MaxWeeklyHours {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Type: ConflictOvertime,
			Message: fmt.Sprintf("%.1f assigned hours in ISO week %d-W%02d exceed the %.0f hour limit",
				hoursByWeek[key], key.year, key.week, MaxWeeklyHours),
			ShiftIDs: shiftsByWeek[key],
		})
	}
	return conflicts
}

// RangeCovered reports whether [start, end) is fully contained in one of the
// availability windows declared for start's weekday. Shifts crossing midnight
// are never covered by the within-day windows.
func RangeCovered(rules AvailabilityRules, start, end time.Time) bool {
	windows, ok := rules[start.Weekday()]
	if !ok || len(windows) == 0 {
		return false
	}

	startMinutes := start.Hour()*60 + start.Minute()
	endMinutes := end.Hour()*60 + end.Minute()
	if endMinutes <= startMinutes {
		return false
	}

	for _, window := range windows {
		winStart, okStart := parseClock(window.Start)
		winEnd, okEnd := parseClock(window.End)
		if !okStart || !okEnd {
			continue
		}
		if startMinutes >= winStart && endMinutes <= winEnd {
			return true
		}
	}
	return false
}

// HasValidWindows reports whether the rules declare at least one parseable
// window. Rules that fail this are treated by callers as absent data.
func (r AvailabilityRules) HasValidWindows() bool {
	for _, windows := range r {
		for _, window := range windows {
			_, okStart := parseClock(window.Start)
			_, okEnd := parseClock(window.End)
			if okStart && okEnd {
				return true
			}
		}
	}
	return false
}

func parseClock(raw string) (minutes int, ok bool) {
	var hour, minute int
	if _, err := fmt.Sscanf(raw, "%d:%d", &hour, &minute); err != nil {
		return 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
