package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/opsroster/internal/logging"
	"github.com/example/opsroster/internal/persistence"
	"github.com/example/opsroster/internal/recurrence"
	"github.com/example/opsroster/internal/urgency"
)

// RoutineSource lists the routine templates to materialize.
type RoutineSource interface {
	ListActiveRoutines(ctx context.Context) ([]persistence.Routine, error)
}

// WorkItemStore captures the work item persistence interactions the
// materializer needs.
type WorkItemStore interface {
	InsertWorkItemIfAbsent(ctx context.Context, item persistence.WorkItem) (persistence.InsertOutcome, error)
	ListWorkItems(ctx context.Context, filter persistence.WorkItemFilter) ([]persistence.WorkItem, error)
	UpdateUrgencyScore(ctx context.Context, id string, score float64, at time.Time) error
}

// MaterializationService expands active routines into concrete work items
// over a bounded future window. It is the only materialization component that
// talks to storage and the natural entry point for a cron trigger.
type MaterializationService struct {
	routines    RoutineSource
	items       WorkItemStore
	idGenerator func() string
	now         func() time.Time
	logger      zerolog.Logger
}

// NewMaterializationService wires dependencies for materialization runs.
func NewMaterializationService(routines RoutineSource, items WorkItemStore, idGenerator func() string, now func() time.Time, logger zerolog.Logger) *MaterializationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MaterializationService{
		routines:    routines,
		items:       items,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
	}
}

// Run materializes every active routine over [now, now+HorizonDays).
//
// Per-routine problems (malformed rules missing type-required fields, storage
// failures) are logged, counted in Failed, and never abort the batch.
// Contract-level corruption (an unknown rule type, a criticality outside
// [1,5]) does raise: configuration that broken must not silently produce an
// incorrect schedule. Re-running over an overlapping window is safe; items
// whose natural key already exists count as Skipped.
func (s *MaterializationService) Run(ctx context.Context, params MaterializationParams) (MaterializationResult, error) {
	if s == nil || s.routines == nil || s.items == nil {
		return MaterializationResult{}, fmt.Errorf("materialization service not configured")
	}

	vErr := &ValidationError{}
	if params.HorizonDays <= 0 {
		vErr.add("horizon_days", "must be a positive number of days")
	}
	loc := time.UTC
	if params.Timezone != "" {
		parsed, err := time.LoadLocation(params.Timezone)
		if err != nil {
			vErr.add("timezone", fmt.Sprintf("unknown timezone %q", params.Timezone))
		} else {
			loc = parsed
		}
	}
	if vErr.HasErrors() {
		return MaterializationResult{}, vErr
	}

	logger := logging.FromContext(ctx, s.logger).With().Str("service", "materialization").Logger()

	routines, err := s.routines.ListActiveRoutines(ctx)
	if err != nil {
		return MaterializationResult{}, fmt.Errorf("list active routines: %w", err)
	}

	engine := recurrence.NewEngine(loc)
	runStart := s.now().In(loc)
	windowEnd := runStart.AddDate(0, 0, params.HorizonDays)

	var result MaterializationResult
	for _, routine := range routines {
		result.RoutinesProcessed++

		created, skipped, err := s.materializeRoutine(ctx, engine, routine, runStart, windowEnd)
		result.Created += created
		result.Skipped += skipped
		if err != nil {
			if isContractError(err) {
				return result, fmt.Errorf("routine %s: %w", routine.ID, err)
			}
			result.Failed++
			logger.Warn().Err(err).Str("routine_id", routine.ID).Msg("routine skipped")
		}
	}

	logger.Info().
		Int("routines", result.RoutinesProcessed).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("materialization run finished")

	return result, nil
}

func (s *MaterializationService) materializeRoutine(ctx context.Context, engine *recurrence.Engine, routine persistence.Routine, windowStart, windowEnd time.Time) (created, skipped int, err error) {
	rule := ruleFromRoutine(routine)
	timestamps, err := engine.Expand(rule, windowStart, windowEnd)
	if err != nil {
		return 0, 0, err
	}

	areas := routine.AreaIDs
	if len(areas) == 0 {
		// Routines without sub-locations materialize one item per slot.
		areas = []string{""}
	}

	now := s.now()
	for _, dueAt := range timestamps {
		score, err := urgency.Score(routine.Criticality, dueAt, nil, now)
		if err != nil {
			return created, skipped, err
		}

		for _, areaID := range areas {
			item := persistence.WorkItem{
				ID:           s.idGenerator(),
				RoutineID:    routine.ID,
				AreaID:       areaID,
				DueAt:        dueAt,
				Criticality:  routine.Criticality,
				Status:       persistence.StatusPending,
				UrgencyScore: score,
			}

			outcome, err := s.items.InsertWorkItemIfAbsent(ctx, item)
			if err != nil {
				return created, skipped, fmt.Errorf("insert work item: %w", err)
			}
			switch outcome {
			case persistence.OutcomeCreated:
				created++
			case persistence.OutcomeDuplicate:
				skipped++
			}
		}
	}

	return created, skipped, nil
}

// RefreshUrgency recomputes urgency scores for every pending work item. Items
// whose stored data can no longer be scored are counted and skipped so one
// bad record does not stall the refresh.
func (s *MaterializationService) RefreshUrgency(ctx context.Context) (RefreshResult, error) {
	if s == nil || s.items == nil {
		return RefreshResult{}, fmt.Errorf("materialization service not configured")
	}

	logger := logging.FromContext(ctx, s.logger).With().Str("service", "materialization").Logger()

	pending := persistence.StatusPending
	items, err := s.items.ListWorkItems(ctx, persistence.WorkItemFilter{Status: &pending})
	if err != nil {
		return RefreshResult{}, fmt.Errorf("list pending work items: %w", err)
	}

	now := s.now()
	var result RefreshResult
	for _, item := range items {
		var window *urgency.Window
		if item.WindowStart != nil && item.WindowEnd != nil {
			window = &urgency.Window{Start: *item.WindowStart, End: *item.WindowEnd}
		}

		score, err := urgency.Score(item.Criticality, item.DueAt, window, now)
		if err != nil {
			result.Failed++
			logger.Warn().Err(err).Str("work_item_id", item.ID).Msg("urgency refresh skipped item")
			continue
		}

		if err := s.items.UpdateUrgencyScore(ctx, item.ID, score, now); err != nil {
			result.Failed++
			logger.Warn().Err(err).Str("work_item_id", item.ID).Msg("failed to persist urgency score")
			continue
		}
		result.Updated++
	}

	return result, nil
}

// ListPendingWork returns pending items with their derived urgency level,
// ordered by due time.
func (s *MaterializationService) ListPendingWork(ctx context.Context) ([]WorkItemView, error) {
	if s == nil || s.items == nil {
		return nil, fmt.Errorf("materialization service not configured")
	}

	pending := persistence.StatusPending
	items, err := s.items.ListWorkItems(ctx, persistence.WorkItemFilter{Status: &pending})
	if err != nil {
		return nil, fmt.Errorf("list pending work items: %w", err)
	}

	views := make([]WorkItemView, 0, len(items))
	for _, item := range items {
		views = append(views, viewFromWorkItem(item))
	}
	return views, nil
}

// isContractError reports whether the error indicates corrupt configuration
// that must fail the run rather than be skipped.
func isContractError(err error) bool {
	return errors.Is(err, recurrence.ErrInvalidRuleType) ||
		errors.Is(err, urgency.ErrInvalidCriticality)
}
