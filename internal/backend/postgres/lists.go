package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taskrush/internal/service"
)

const listColumns = `id, user_id, name, color, sort_order, created_at, updated_at`

func scanList(row pgx.Row) (service.List, error) {
	var (
		l          service.List
		id, userID uuid.UUID
	)
	err := row.Scan(&id, &userID, &l.Name, &l.Color, &l.SortOrder, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return service.List{}, err
	}
	l.ID = id.String()
	l.UserID = userID.String()
	return l, nil
}

// ListLists implements service.Service.
func (c *Client) ListLists(ctx context.Context) ([]service.List, error) {
	userID, err := c.user(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	rows, err := c.pool.Query(ctx,
		`SELECT `+listColumns+` FROM lists WHERE user_id = $1 ORDER BY sort_order, created_at`, userID)
	if err != nil {
		return nil, wrapError(err)
	}
	lists, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (service.List, error) {
		return scanList(row)
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return lists, nil
}

// CreateList implements service.Service.
func (c *Client) CreateList(ctx context.Context, list service.NewList) (service.List, error) {
	userID, err := c.user(ctx)
	if err != nil {
		return service.List{}, err
	}
	list = list.WithDefaults()
	now := c.now().UTC()

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	row := c.pool.QueryRow(ctx, `
		INSERT INTO lists (id, user_id, name, color, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING `+listColumns,
		uuid.New().String(), userID, list.Name, list.Color, service.SortOrderAt(now), now)
	created, err := scanList(row)
	if err != nil {
		return service.List{}, wrapError(err)
	}
	return created, nil
}

// UpdateList implements service.Service.
func (c *Client) UpdateList(ctx context.Context, id string, patch service.ListPatch) (service.List, error) {
	userID, err := c.user(ctx)
	if err != nil {
		return service.List{}, err
	}
	if id, err = parseID(id); err != nil {
		return service.List{}, err
	}
	q, args := listUpdate(patch, c.now().UTC()).sql("lists", id, userID, listColumns)
	if q == "" {
		q, args = `SELECT `+listColumns+` FROM lists WHERE id = $1 AND user_id = $2`, []any{id, userID}
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	updated, err := scanList(c.pool.QueryRow(ctx, q, args...))
	if err != nil {
		return service.List{}, wrapError(err)
	}
	return updated, nil
}

// DeleteList implements service.Service. Tasks in the list are removed with it.
func (c *Client) DeleteList(ctx context.Context, id string) error {
	userID, err := c.user(ctx)
	if err != nil {
		return err
	}
	if id, err = parseID(id); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	tag, err := c.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrapError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: list %s", service.ErrNotFound, id)
	}
	return nil
}
