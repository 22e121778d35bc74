// Package service defines the backend-agnostic interface for task operations.
package service

import "time"

const (
	// DefaultListColor is applied when a list is created without a color.
	DefaultListColor = "#3b82f6"

	// DefaultEstimatedMinutes is applied when a task is created without an estimate.
	DefaultEstimatedMinutes = 25
)

// List is a named, colored group of tasks owned by one user.
type List struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	SortOrder int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Task is a single task item. A task belongs to exactly one list.
type Task struct {
	ID               string
	UserID           string
	ListID           string
	Title            string
	Notes            string
	IsCompleted      bool
	EstimatedMinutes float64
	ActualMinutes    float64
	Priority         *int // 1 (most urgent) to 4; nil sorts last
	SortOrder        int64
	ScheduledDate    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

// PriorityValue returns the task priority, or max int when unset.
func (t Task) PriorityValue() int {
	if t.Priority == nil {
		return int(^uint(0) >> 1)
	}
	return *t.Priority
}

// NewList is the payload for creating a list.
type NewList struct {
	Name  string
	Color string
}

// NewTask is the payload for creating a task.
type NewTask struct {
	Title            string
	ListID           string
	EstimatedMinutes float64
	Priority         *int
}

// WithDefaults returns a copy with server-side defaults applied.
func (n NewList) WithDefaults() NewList {
	if n.Color == "" {
		n.Color = DefaultListColor
	}
	return n
}

// WithDefaults returns a copy with server-side defaults applied.
func (n NewTask) WithDefaults() NewTask {
	if n.EstimatedMinutes <= 0 {
		n.EstimatedMinutes = DefaultEstimatedMinutes
	}
	return n
}

// SortOrderAt returns the sort order assigned to records created at t.
func SortOrderAt(t time.Time) int64 {
	return t.Unix()
}

// Session is the authenticated user session.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// AuthEvent identifies an auth-state change.
type AuthEvent string

const (
	AuthInitialSession AuthEvent = "INITIAL_SESSION"
	AuthSignedIn       AuthEvent = "SIGNED_IN"
	AuthSignedOut      AuthEvent = "SIGNED_OUT"
	AuthTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)
