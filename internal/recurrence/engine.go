package recurrence

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RuleType identifies the recurrence pattern of a rule.
type RuleType string

const (
	// RuleDaily generates occurrences on every day of the window.
	RuleDaily RuleType = "daily"
	// RuleWeekly generates occurrences on the selected weekdays.
	RuleWeekly RuleType = "weekly"
	// RuleCustomWeeks generates occurrences on the selected weekdays every
	// IntervalWeeks weeks, anchored to StartsOn (or the window start).
	RuleCustomWeeks RuleType = "custom_weeks"
	// RuleMonthly generates occurrences on a fixed day of the month.
	RuleMonthly RuleType = "monthly"
	// RuleOneOff emits a single occurrence at the window start.
	RuleOneOff RuleType = "oneoff"
)

// Rule describes the recurrence configuration attached to a routine. A rule
// is immutable once attached: a routine may be superseded but never mutated
// mid-expansion.
//
// Monthly rules with DayOfMonth > 28 silently produce no occurrence in months
// that lack that day (DayOfMonth=31 skips February entirely). This matches the
// legacy behavior downstream callers depend on; the day is not clamped to the
// end of the month.
type Rule struct {
	ID            string
	RoutineID     string
	Type          RuleType
	TimeSlots     []string // "HH:MM", 24h clock
	Weekdays      []time.Weekday
	IntervalWeeks int
	DayOfMonth    int
	StartsOn      *time.Time
	EndsOn        *time.Time
}

var (
	// ErrInvalidRuleType indicates the rule type is unknown or unset.
	ErrInvalidRuleType = errors.New("recurrence: invalid rule type")
	// ErrNoTimeSlots indicates the rule has no time slots to expand.
	ErrNoTimeSlots = errors.New("recurrence: rule requires at least one time slot")
	// ErrInvalidTimeSlot indicates a time slot is not a valid HH:MM value.
	ErrInvalidTimeSlot = errors.New("recurrence: invalid time slot")
	// ErrMissingWeekdays indicates a weekly rule has no weekday selection.
	ErrMissingWeekdays = errors.New("recurrence: rule requires weekday selection")
	// ErrInvalidInterval indicates a custom_weeks rule has a non-positive interval.
	ErrInvalidInterval = errors.New("recurrence: interval weeks must be positive")
	// ErrInvalidDayOfMonth indicates a monthly rule's day is outside [1,31].
	ErrInvalidDayOfMonth = errors.New("recurrence: day of month must be within 1..31")
	// ErrInvalidWindow indicates the expansion window is empty or inverted.
	ErrInvalidWindow = errors.New("recurrence: window end must be after window start")
)

// Validate reports whether the rule carries every field its type requires.
func (r Rule) Validate() error {
	if len(r.TimeSlots) == 0 {
		return ErrNoTimeSlots
	}
	for _, slot := range r.TimeSlots {
		if _, _, err := parseSlot(slot); err != nil {
			return err
		}
	}

	switch r.Type {
	case RuleDaily, RuleOneOff:
	case RuleWeekly:
		if len(r.Weekdays) == 0 {
			return ErrMissingWeekdays
		}
	case RuleCustomWeeks:
		if len(r.Weekdays) == 0 {
			return ErrMissingWeekdays
		}
		if r.IntervalWeeks <= 0 {
			return ErrInvalidInterval
		}
	case RuleMonthly:
		if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
			return ErrInvalidDayOfMonth
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRuleType, r.Type)
	}

	return nil
}

// Engine expands recurrence rules into concrete due timestamps. All
// timestamps within one expansion run are produced in the engine's location;
// mixing timezones within a run is a caller defect, not a supported mode.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that generates timestamps in the provided
// location. If loc is nil, UTC is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

// Location returns the canonical timezone used for expansion.
func (e *Engine) Location() *time.Location {
	if e == nil || e.location == nil {
		return time.UTC
	}
	return e.location
}

// Expand produces every due timestamp of the rule within [windowStart,
// windowEnd). The result is deterministic: identical inputs always yield the
// identical sequence, ordered by day then by slot order.
//
// Reaching the rule's EndsOn terminates generation entirely rather than
// skipping individual days; candidates before StartsOn are skipped without
// ending the run.
func (e *Engine) Expand(rule Rule, windowStart, windowEnd time.Time) ([]time.Time, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	loc := e.Location()
	windowStart = windowStart.In(loc)
	windowEnd = windowEnd.In(loc)
	if !windowEnd.After(windowStart) {
		return nil, ErrInvalidWindow
	}

	slots := make([]daySlot, len(rule.TimeSlots))
	for i, raw := range rule.TimeSlots {
		hour, minute, err := parseSlot(raw)
		if err != nil {
			return nil, err
		}
		slots[i] = daySlot{hour: hour, minute: minute}
	}

	var startsOn, endsOn time.Time
	if rule.StartsOn != nil {
		startsOn = rule.StartsOn.In(loc)
	}
	if rule.EndsOn != nil {
		endsOn = rule.EndsOn.In(loc)
	}

	if rule.Type == RuleOneOff {
		candidate := atSlot(windowStart, slots[0], loc)
		if !startsOn.IsZero() && candidate.Before(startsOn) {
			return nil, nil
		}
		if !endsOn.IsZero() && candidate.After(endsOn) {
			return nil, nil
		}
		return []time.Time{candidate}, nil
	}

	reference := windowStart
	if !startsOn.IsZero() {
		reference = startsOn
	}

	timestamps := make([]time.Time, 0)
	for day := startOfDay(windowStart, loc); day.Before(windowEnd); day = day.AddDate(0, 0, 1) {
		if !matchesDay(rule, day, reference) {
			continue
		}
		for _, slot := range slots {
			candidate := atSlot(day, slot, loc)
			if candidate.Before(windowStart) || !candidate.Before(windowEnd) {
				continue
			}
			if !startsOn.IsZero() && candidate.Before(startsOn) {
				continue
			}
			if !endsOn.IsZero() && candidate.After(endsOn) {
				// End of the rule's lifetime: stop generating entirely,
				// do not merely skip the day.
				return timestamps, nil
			}
			timestamps = append(timestamps, candidate)
		}
	}

	return timestamps, nil
}

type daySlot struct {
	hour   int
	minute int
}

func matchesDay(rule Rule, day, reference time.Time) bool {
	switch rule.Type {
	case RuleDaily:
		return true
	case RuleWeekly:
		return weekdaySelected(rule.Weekdays, day.Weekday())
	case RuleCustomWeeks:
		if !weekdaySelected(rule.Weekdays, day.Weekday()) {
			return false
		}
		weeks := weeksBetween(reference, day)
		return weeks >= 0 && weeks%rule.IntervalWeeks == 0
	case RuleMonthly:
		return day.Day() == rule.DayOfMonth
	default:
		return false
	}
}

func weekdaySelected(selected []time.Weekday, day time.Weekday) bool {
	for _, wd := range selected {
		if wd == day {
			return true
		}
	}
	return false
}

// weeksBetween counts whole weeks from the reference date to the given day,
// comparing calendar dates. Rounding the day delta absorbs DST shifts.
func weeksBetween(reference, day time.Time) int {
	ref := startOfDay(reference, day.Location())
	days := int(math.Round(day.Sub(ref).Hours() / 24))
	if days < 0 {
		return -1
	}
	return days / 7
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

func atSlot(day time.Time, slot daySlot, loc *time.Location) time.Time {
	local := day.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), slot.hour, slot.minute, 0, 0, loc)
}

func parseSlot(raw string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeSlot, raw)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeSlot, raw)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeSlot, raw)
	}
	return hour, minute, nil
}
