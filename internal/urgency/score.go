// Package urgency computes normalized priority scores for pending work items.
package urgency

import (
	"errors"
	"fmt"
	"time"
)

// Level buckets a score for presentation. Thresholds are fixed across the
// system so every caller agrees on what "high" means.
type Level string

const (
	// LevelLow covers scores below 0.4.
	LevelLow Level = "low"
	// LevelMedium covers scores in [0.4, 0.6).
	LevelMedium Level = "medium"
	// LevelHigh covers scores in [0.6, 0.8).
	LevelHigh Level = "high"
	// LevelCritical covers scores of 0.8 and above.
	LevelCritical Level = "critical"
)

const (
	thresholdMedium   = 0.4
	thresholdHigh     = 0.6
	thresholdCritical = 0.8
)

const (
	timeWeight        = 0.7
	criticalityWeight = 0.3

	// defaultLead is the ramp-up horizon when the item has no execution
	// window to derive one from.
	defaultLead = 24 * time.Hour

	// overdueHalfLife controls how fast an overdue item closes the gap to
	// 1.0: at 4 hours overdue half the remaining headroom is consumed.
	overdueHalfLife = 4 * time.Hour
)

// ErrInvalidCriticality indicates a criticality outside [1,5]. This is a
// contract violation: configuration this corrupt must not silently produce a
// score.
var ErrInvalidCriticality = errors.New("urgency: criticality must be within 1..5")

// Window bounds the period during which a work item is expected to be
// completed. Start is used to scale time proximity toward the due instant.
type Window struct {
	Start time.Time
	End   time.Time
}

// Score maps criticality and due-time proximity to a value in [0,1].
//
// The score is monotonic on both axes: moving now closer to (or past) dueAt
// never decreases it, and a higher criticality never decreases it for equal
// timing. Past the due instant the score climbs asymptotically toward 1.0
// without ever exceeding the bound.
func Score(criticality int, dueAt time.Time, window *Window, now time.Time) (float64, error) {
	if criticality < 1 || criticality > 5 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidCriticality, criticality)
	}

	critNorm := float64(criticality-1) / 4

	lead := defaultLead
	if window != nil && window.Start.Before(dueAt) {
		lead = dueAt.Sub(window.Start)
	}

	if now.Before(dueAt) {
		remaining := dueAt.Sub(now)
		proximity := 1 - float64(remaining)/float64(lead)
		if proximity < 0 {
			proximity = 0
		}
		return clamp(timeWeight*proximity + criticalityWeight*critNorm), nil
	}

	// Overdue: start from the at-due score and consume the remaining
	// headroom asymptotically.
	atDue := timeWeight + criticalityWeight*critNorm
	overdue := now.Sub(dueAt)
	fraction := float64(overdue) / float64(overdue+overdueHalfLife)
	return clamp(atDue + (1-atDue)*fraction), nil
}

// LevelForScore buckets a score into the shared presentation levels.
func LevelForScore(score float64) Level {
	switch {
	case score >= thresholdCritical:
		return LevelCritical
	case score >= thresholdHigh:
		return LevelHigh
	case score >= thresholdMedium:
		return LevelMedium
	default:
		return LevelLow
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
