package service

import "time"

// Nullable is a patch value for a nullable column.
// The zero value leaves the column untouched; Set with a nil Value clears it.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// SetTo returns a Nullable that writes v.
func SetTo[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Clear returns a Nullable that writes NULL.
func Clear[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// ListPatch is a partial update of a list. Nil fields are left unchanged.
type ListPatch struct {
	Name      *string
	Color     *string
	SortOrder *int64
}

// Empty reports whether the patch changes nothing.
func (p ListPatch) Empty() bool {
	return p.Name == nil && p.Color == nil && p.SortOrder == nil
}

// Apply merges the patch onto l.
func (p ListPatch) Apply(l List) List {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
	if p.SortOrder != nil {
		l.SortOrder = *p.SortOrder
	}
	return l
}

// TaskPatch is a partial update of a task. Nil fields are left unchanged.
type TaskPatch struct {
	Title            *string
	Notes            *string
	ListID           *string
	IsCompleted      *bool
	EstimatedMinutes *float64
	ActualMinutes    *float64
	Priority         Nullable[int]
	SortOrder        *int64
	ScheduledDate    Nullable[time.Time]
	CompletedAt      Nullable[time.Time]
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Notes == nil && p.ListID == nil &&
		p.IsCompleted == nil && p.EstimatedMinutes == nil &&
		p.ActualMinutes == nil && !p.Priority.Set && p.SortOrder == nil &&
		!p.ScheduledDate.Set && !p.CompletedAt.Set
}

// Apply merges the patch onto t.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.ListID != nil {
		t.ListID = *p.ListID
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	if p.EstimatedMinutes != nil {
		t.EstimatedMinutes = *p.EstimatedMinutes
	}
	if p.ActualMinutes != nil {
		t.ActualMinutes = *p.ActualMinutes
	}
	if p.Priority.Set {
		t.Priority = copyPtr(p.Priority.Value)
	}
	if p.SortOrder != nil {
		t.SortOrder = *p.SortOrder
	}
	if p.ScheduledDate.Set {
		t.ScheduledDate = copyPtr(p.ScheduledDate.Value)
	}
	if p.CompletedAt.Set {
		t.CompletedAt = copyPtr(p.CompletedAt.Value)
	}
	return t
}

// CompletionPatch marks a task done at the given instant, or reopens it.
func CompletionPatch(done bool, at time.Time) TaskPatch {
	p := TaskPatch{IsCompleted: &done}
	if done {
		p.CompletedAt = SetTo(at)
	} else {
		p.CompletedAt = Clear[time.Time]()
	}
	return p
}

func copyPtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
