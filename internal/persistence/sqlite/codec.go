package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/example/opsroster/internal/persistence"
)

// Availability is persisted as {"mon": [["08:00","12:00"], ...], ...}; the
// wire shape mirrors what upstream form submissions produce.
var dayKeys = map[time.Weekday]string{
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
	time.Sunday:    "sun",
}

var keyDays = func() map[string]time.Weekday {
	m := make(map[string]time.Weekday, len(dayKeys))
	for day, key := range dayKeys {
		m[key] = day
	}
	return m
}()

func encodeStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

func encodeWeekdays(days []time.Weekday) string {
	ints := make([]int, len(days))
	for i, day := range days {
		ints[i] = int(day)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeWeekdays(raw string) []time.Weekday {
	if raw == "" {
		return nil
	}
	var ints []int
	if err := json.Unmarshal([]byte(raw), &ints); err != nil {
		return nil
	}
	days := make([]time.Weekday, 0, len(ints))
	for _, v := range ints {
		if v < 0 || v > 6 {
			continue
		}
		days = append(days, time.Weekday(v))
	}
	return days
}

func encodeAvailability(rules map[time.Weekday][]persistence.ClockRange) sql.NullString {
	if rules == nil {
		return sql.NullString{}
	}
	wire := make(map[string][][2]string, len(rules))
	for day, ranges := range rules {
		key, ok := dayKeys[day]
		if !ok {
			continue
		}
		pairs := make([][2]string, 0, len(ranges))
		for _, r := range ranges {
			pairs = append(pairs, [2]string{r.Start, r.End})
		}
		wire[key] = pairs
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

// decodeAvailability returns nil for absent or undecodable rules. A single
// bad record must degrade to "no rules", never abort the read.
func decodeAvailability(raw sql.NullString) map[time.Weekday][]persistence.ClockRange {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var wire map[string][][2]string
	if err := json.Unmarshal([]byte(raw.String), &wire); err != nil {
		return nil
	}
	rules := make(map[time.Weekday][]persistence.ClockRange, len(wire))
	for key, pairs := range wire {
		day, ok := keyDays[key]
		if !ok {
			continue
		}
		ranges := make([]persistence.ClockRange, 0, len(pairs))
		for _, pair := range pairs {
			ranges = append(ranges, persistence.ClockRange{Start: pair[0], End: pair[1]})
		}
		rules[day] = ranges
	}
	if len(rules) == 0 {
		return nil
	}
	return rules
}
