package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// FocusBackground implements service.Preferences. "" means unset.
func (c *Client) FocusBackground(ctx context.Context) (string, error) {
	userID, err := c.user(ctx)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var value *string
	err = c.pool.QueryRow(ctx,
		`SELECT focus_bg_image FROM user_preferences WHERE user_id = $1`, userID).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", wrapError(err)
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}

// SetFocusBackground implements service.Preferences. "" clears it.
func (c *Client) SetFocusBackground(ctx context.Context, value string) error {
	userID, err := c.user(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var v *string
	if value != "" {
		v = &value
	}
	_, err = c.pool.Exec(ctx, `
		INSERT INTO user_preferences (user_id, focus_bg_image, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET focus_bg_image = excluded.focus_bg_image, updated_at = excluded.updated_at`,
		userID, v, c.now().UTC())
	return wrapError(err)
}
