package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/opsroster/internal/persistence"
)

// WorkItemRepository implements persistence.WorkItemRepository on SQLite.
type WorkItemRepository struct {
	storage *Storage
}

// NewWorkItemRepository binds the repository to the shared storage.
func NewWorkItemRepository(storage *Storage) *WorkItemRepository {
	return &WorkItemRepository{storage: storage}
}

// InsertWorkItemIfAbsent writes the item unless its natural key already
// exists. A unique-index collision resolves to OutcomeDuplicate without
// error, which is what makes materialization safely re-runnable. An empty
// AreaID is valid: it is the sentinel for routines without sub-locations.
func (r *WorkItemRepository) InsertWorkItemIfAbsent(ctx context.Context, item persistence.WorkItem) (persistence.InsertOutcome, error) {
	if item.ID == "" || item.RoutineID == "" {
		return "", persistence.ErrConstraintViolation
	}
	if item.Status == "" {
		item.Status = persistence.StatusPending
	}

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	query := `
		INSERT INTO work_items (id, routine_id, area_id, due_at, window_start, window_end,
			criticality, status, urgency_score, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.storage.db.ExecContext(ctx, query,
		item.ID,
		item.RoutineID,
		item.AreaID,
		formatTime(item.DueAt),
		formatTimePtr(item.WindowStart),
		formatTimePtr(item.WindowEnd),
		item.Criticality,
		string(item.Status),
		item.UrgencyScore,
		formatTime(item.CreatedAt),
		formatTime(item.UpdatedAt),
	)
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, persistence.ErrDuplicate) {
			return persistence.OutcomeDuplicate, nil
		}
		return "", mapped
	}
	return persistence.OutcomeCreated, nil
}

// GetWorkItem fetches a work item by id.
func (r *WorkItemRepository) GetWorkItem(ctx context.Context, id string) (persistence.WorkItem, error) {
	row := r.storage.db.QueryRowContext(ctx, selectWorkItemQuery+" WHERE id = ?", id)
	item, err := scanWorkItem(row)
	if err != nil {
		return persistence.WorkItem{}, mapError(err)
	}
	return item, nil
}

// ListWorkItems returns items matching the filter, ordered by due time then
// id for reproducible listings.
func (r *WorkItemRepository) ListWorkItems(ctx context.Context, filter persistence.WorkItemFilter) ([]persistence.WorkItem, error) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.DueAfter != nil {
		conditions = append(conditions, "due_at >= ?")
		args = append(args, formatTime(*filter.DueAfter))
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, "due_at < ?")
		args = append(args, formatTime(*filter.DueBefore))
	}

	query := selectWorkItemQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY due_at, id"

	rows, err := r.storage.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	items := make([]persistence.WorkItem, 0)
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan work item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateUrgencyScore persists a recomputed urgency score.
func (r *WorkItemRepository) UpdateUrgencyScore(ctx context.Context, id string, score float64, at time.Time) error {
	return r.updateColumn(ctx, id, "urgency_score", score, at)
}

// UpdateStatus transitions a work item's status. The engine never calls this
// on its own; status transitions belong to the calling application.
func (r *WorkItemRepository) UpdateStatus(ctx context.Context, id string, status persistence.WorkItemStatus, at time.Time) error {
	return r.updateColumn(ctx, id, "status", string(status), at)
}

func (r *WorkItemRepository) updateColumn(ctx context.Context, id, column string, value any, at time.Time) error {
	query := fmt.Sprintf("UPDATE work_items SET %s = ?, updated_at = ? WHERE id = ?", column)
	result, err := r.storage.db.ExecContext(ctx, query, value, formatTime(at), id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

const selectWorkItemQuery = `
	SELECT id, routine_id, area_id, due_at, window_start, window_end,
		criticality, status, urgency_score, created_at, updated_at
	FROM work_items
`

func scanWorkItem(row rowScanner) (persistence.WorkItem, error) {
	var (
		item                 persistence.WorkItem
		dueAt                string
		windowStart          sql.NullString
		windowEnd            sql.NullString
		status               string
		createdAt, updatedAt string
	)

	err := row.Scan(
		&item.ID,
		&item.RoutineID,
		&item.AreaID,
		&dueAt,
		&windowStart,
		&windowEnd,
		&item.Criticality,
		&status,
		&item.UrgencyScore,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.WorkItem{}, err
	}

	item.Status = persistence.WorkItemStatus(status)
	if item.DueAt, err = parseTime(dueAt); err != nil {
		return persistence.WorkItem{}, err
	}
	if item.WindowStart, err = parseTimePtr(windowStart); err != nil {
		return persistence.WorkItem{}, err
	}
	if item.WindowEnd, err = parseTimePtr(windowEnd); err != nil {
		return persistence.WorkItem{}, err
	}
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.WorkItem{}, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.WorkItem{}, err
	}

	return item, nil
}
