// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotAuthenticated is returned when a call needs a user session and none exists.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotFound is returned when a list or task does not exist.
	ErrNotFound = errors.New("not found")
)

// AuthListener receives auth-state changes. session is nil after sign-out.
type AuthListener func(event AuthEvent, session *Session)

// Auth is the authentication half of the remote service.
type Auth interface {
	// Session returns the current session, or nil when signed out.
	Session(ctx context.Context) (*Session, error)

	// SignOut ends the current session.
	SignOut(ctx context.Context) error

	// OnAuthStateChange registers fn for login, logout and token refresh.
	// The returned func unsubscribes.
	OnAuthStateChange(fn AuthListener) (unsubscribe func())
}

// Service defines the interface for task backend operations.
// Commands and the client store never import a backend directly.
type Service interface {
	Auth

	// ListLists returns the user's lists ordered by sort order.
	ListLists(ctx context.Context) ([]List, error)

	// CreateList inserts a list and returns the stored record with its id.
	CreateList(ctx context.Context, list NewList) (List, error)

	// UpdateList patches a list by id and stamps its update time.
	UpdateList(ctx context.Context, id string, patch ListPatch) (List, error)

	// DeleteList deletes a list by id. Its tasks go with it.
	DeleteList(ctx context.Context, id string) error

	// ListTasks returns tasks ordered by sort order.
	// An empty listID returns tasks of every list.
	ListTasks(ctx context.Context, listID string) ([]Task, error)

	// ListTasksSince returns tasks created at or after since.
	ListTasksSince(ctx context.Context, since time.Time) ([]Task, error)

	// CreateTask inserts a task and returns the stored record with its id.
	CreateTask(ctx context.Context, task NewTask) (Task, error)

	// UpdateTask patches a task by id and stamps its update time.
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error)

	// DeleteTask deletes a task by id.
	DeleteTask(ctx context.Context, id string) error
}

// Preferences is implemented by backends that store user preferences remotely.
type Preferences interface {
	// FocusBackground returns the stored focus-mode background, or "".
	FocusBackground(ctx context.Context) (string, error)

	// SetFocusBackground stores the focus-mode background. "" clears it.
	SetFocusBackground(ctx context.Context, value string) error
}

// EmailSignIn is implemented by backends that sign users in by email.
type EmailSignIn interface {
	SignIn(ctx context.Context, email string) (*Session, error)
}
