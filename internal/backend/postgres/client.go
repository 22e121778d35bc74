// Package postgres implements service.Service against a hosted Postgres
// database. Users are identified by email; the signed-in identity is kept in
// a local session file.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskrush/internal/auth"
	"taskrush/internal/service"
)

// APITimeout bounds each database call.
const APITimeout = 5 * time.Second

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by Migrate.
func Schema() string { return schemaSQL }

// Client implements service.Service and service.Preferences.
type Client struct {
	auth.Notifier

	pool        *pgxpool.Pool
	sessionPath string
	now         func() time.Time

	mu      sync.Mutex
	session *service.Session
}

// Open connects to dsn. sessionPath is the identity file written by SignIn.
func Open(ctx context.Context, dsn, sessionPath string) (*Client, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("error parsing database config: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 0
	// transaction poolers in front of hosted databases reject prepared statements
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}
	return &Client{pool: pool, sessionPath: sessionPath, now: time.Now}, nil
}

// Close releases the pool.
func (c *Client) Close() {
	c.pool.Close()
}

// Migrate applies the schema. It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("error executing schema: %w", err)
	}
	return nil
}

// Session implements service.Auth. It returns nil when no identity is stored.
func (c *Client) Session(ctx context.Context) (*service.Session, error) {
	c.mu.Lock()
	cached := c.session
	c.mu.Unlock()
	if cached != nil {
		s := *cached
		return &s, nil
	}

	id, err := auth.LoadIdentity(c.sessionPath)
	if err != nil || id == nil {
		return nil, err
	}
	userID, err := c.getOrCreateUser(ctx, id.Email)
	if err != nil {
		return nil, err
	}
	s := &service.Session{UserID: userID.String(), Email: id.Email}
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	return &service.Session{UserID: s.UserID, Email: s.Email}, nil
}

// SignIn resolves or creates the user for email and stores the identity.
func (c *Client) SignIn(ctx context.Context, email string) (*service.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email: %q", email)
	}
	userID, err := c.getOrCreateUser(ctx, email)
	if err != nil {
		return nil, err
	}
	id := auth.Identity{Email: email, UserID: userID.String(), SignedInAt: c.now().UTC()}
	if err := auth.SaveIdentity(c.sessionPath, id); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s := &service.Session{UserID: id.UserID, Email: email}
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	c.Notify(service.AuthSignedIn, &service.Session{UserID: s.UserID, Email: s.Email})
	return s, nil
}

// SignOut implements service.Auth.
func (c *Client) SignOut(ctx context.Context) error {
	if err := auth.RemoveIdentity(c.sessionPath); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	c.Notify(service.AuthSignedOut, nil)
	return nil
}

func (c *Client) getOrCreateUser(ctx context.Context, email string) (uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var id uuid.UUID
	err := c.pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, wrapError(err)
	}

	id = uuid.New()
	err = c.pool.QueryRow(ctx, `
		INSERT INTO users (id, email) VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET email = excluded.email
		RETURNING id`, id.String(), email).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("error creating user: %w", wrapError(err))
	}
	return id, nil
}

// user returns the signed-in user id or service.ErrNotAuthenticated.
func (c *Client) user(ctx context.Context) (string, error) {
	s, err := c.Session(ctx)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", service.ErrNotAuthenticated
	}
	return s.UserID, nil
}

// parseID validates a record id. Malformed ids cannot exist, so they are
// reported as not found rather than sent to the database.
func parseID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}
	return u.String(), nil
}

// wrapError maps driver errors onto service errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return service.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", service.ErrNotFound, pgErr.ConstraintName)
		case "23514": // check_violation
			return fmt.Errorf("invalid value: %s", pgErr.ConstraintName)
		}
		return fmt.Errorf("database error: %s", pgErr.Message)
	}
	return err
}
