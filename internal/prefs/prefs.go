// Package prefs is the local key/value store for client state that survives
// restarts, such as the focus screen background.
package prefs

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"taskrush/internal/service"
)

//go:embed schema.sql
var schemaSQL string

const (
	// KeyFocusBackground holds the focus screen background image.
	KeyFocusBackground = "focus_bg_image"

	// KeySelectedList holds the id of the list shown by default.
	KeySelectedList = "selected_list"
)

// Store is a SQLite-backed key/value store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the value for key. ok is false when the key is unset.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an unset key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Background returns the focus background. The remote preference wins when
// remote is non-nil and has a value, and is cached locally; otherwise the
// cached value is returned. Remote failures fall back to the cache.
func (s *Store) Background(ctx context.Context, remote service.Preferences, logger *slog.Logger) (string, error) {
	if remote != nil {
		value, err := remote.FocusBackground(ctx)
		switch {
		case err != nil:
			if logger != nil {
				logger.Warn("remote focus background unavailable", "error", err)
			}
		case value != "":
			if err := s.Set(ctx, KeyFocusBackground, value); err != nil {
				return value, err
			}
			return value, nil
		}
	}
	value, _, err := s.Get(ctx, KeyFocusBackground)
	return value, err
}

// SetBackground stores the focus background locally and, when remote is
// non-nil, remotely. An empty value clears it.
func (s *Store) SetBackground(ctx context.Context, remote service.Preferences, value string) error {
	var err error
	if value == "" {
		err = s.Delete(ctx, KeyFocusBackground)
	} else {
		err = s.Set(ctx, KeyFocusBackground, value)
	}
	if err != nil {
		return err
	}
	if remote != nil {
		if err := remote.SetFocusBackground(ctx, value); err != nil {
			return fmt.Errorf("save remote focus background: %w", err)
		}
	}
	return nil
}
