package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taskrush/internal/service"
)

const taskColumns = `id, user_id, list_id, title, coalesce(notes, ''), is_completed,
	estimated_minutes, actual_minutes, priority, sort_order, scheduled_date,
	created_at, updated_at, completed_at`

func scanTask(row pgx.Row) (service.Task, error) {
	var (
		t                  service.Task
		id, userID, listID uuid.UUID
	)
	err := row.Scan(&id, &userID, &listID, &t.Title, &t.Notes, &t.IsCompleted,
		&t.EstimatedMinutes, &t.ActualMinutes, &t.Priority, &t.SortOrder, &t.ScheduledDate,
		&t.CreatedAt, &t.UpdatedAt, &t.CompletedAt)
	if err != nil {
		return service.Task{}, err
	}
	t.ID = id.String()
	t.UserID = userID.String()
	t.ListID = listID.String()
	return t, nil
}

func (c *Client) queryTasks(ctx context.Context, q string, args ...any) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	rows, err := c.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, wrapError(err)
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (service.Task, error) {
		return scanTask(row)
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return tasks, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, listID string) ([]service.Task, error) {
	userID, err := c.user(ctx)
	if err != nil {
		return nil, err
	}
	if listID == "" {
		return c.queryTasks(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY sort_order`, userID)
	}
	if listID, err = parseID(listID); err != nil {
		return nil, err
	}
	return c.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND list_id = $2 ORDER BY sort_order`,
		userID, listID)
}

// ListTasksSince implements service.Service.
func (c *Client) ListTasksSince(ctx context.Context, since time.Time) ([]service.Task, error) {
	userID, err := c.user(ctx)
	if err != nil {
		return nil, err
	}
	return c.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND created_at >= $2 ORDER BY created_at`,
		userID, since.UTC())
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, task service.NewTask) (service.Task, error) {
	userID, err := c.user(ctx)
	if err != nil {
		return service.Task{}, err
	}
	listID, err := parseID(task.ListID)
	if err != nil {
		return service.Task{}, err
	}
	task = task.WithDefaults()
	now := c.now().UTC()

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// The list must belong to the same user.
	row := c.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, user_id, list_id, title, estimated_minutes, actual_minutes,
			is_completed, priority, sort_order, created_at, updated_at)
		SELECT $1, $2, l.id, $4, $5, 0, false, $6, $7, $8, $8
		FROM lists l WHERE l.id = $3 AND l.user_id = $2
		RETURNING `+taskColumns,
		uuid.New().String(), userID, listID, task.Title, task.EstimatedMinutes,
		task.Priority, service.SortOrderAt(now), now)
	created, err := scanTask(row)
	if err != nil {
		err = wrapError(err)
		return service.Task{}, fmt.Errorf("create task in list %s: %w", listID, err)
	}
	return created, nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	userID, err := c.user(ctx)
	if err != nil {
		return service.Task{}, err
	}
	if id, err = parseID(id); err != nil {
		return service.Task{}, err
	}
	if patch.ListID != nil {
		listID, err := parseID(*patch.ListID)
		if err != nil {
			return service.Task{}, err
		}
		patch.ListID = &listID
	}
	q, args := taskUpdate(patch, c.now().UTC()).sql("tasks", id, userID, taskColumns)
	if q == "" {
		q, args = `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, []any{id, userID}
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	updated, err := scanTask(c.pool.QueryRow(ctx, q, args...))
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return updated, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	userID, err := c.user(ctx)
	if err != nil {
		return err
	}
	if id, err = parseID(id); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	tag, err := c.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrapError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: task %s", service.ErrNotFound, id)
	}
	return nil
}
