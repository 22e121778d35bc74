// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"taskrush/internal/auth"
	"taskrush/internal/service"
)

// TestUserID is the user id of the default fake session.
const TestUserID = "user-1"

// Call records one mutating call made against the FakeService.
type Call struct {
	Op        string
	ID        string
	TaskPatch service.TaskPatch
	ListPatch service.ListPatch
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	auth.Notifier

	mu      sync.RWMutex
	session *service.Session
	lists   []service.List
	tasks   []service.Task
	nextID  int
	calls   []Call
	now     func() time.Time

	// Error injection for testing
	SessionErr      error
	SignInErr       error
	SignOutErr      error
	ListListsErr    error
	CreateListErr   error
	UpdateListErr   error
	DeleteListErr   error
	ListTasksErr    error
	CreateTaskErr   error
	UpdateTaskErr   error
	DeleteTaskErr   error
	TasksSinceErr   error
	FocusBgErr      error
	focusBackground string
}

// NewFakeService creates a FakeService signed in as TestUserID.
func NewFakeService() *FakeService {
	return &FakeService{
		session: &service.Session{UserID: TestUserID, Email: "test@example.com"},
		now:     func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) },
	}
}

// SetNow sets the clock used to stamp records.
func (f *FakeService) SetNow(now func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// SetSession replaces the session and notifies listeners.
func (f *FakeService) SetSession(s service.Session) {
	f.mu.Lock()
	f.session = &s
	f.mu.Unlock()
	f.Notify(service.AuthSignedIn, &s)
}

// SignIn implements service.EmailSignIn.
func (f *FakeService) SignIn(ctx context.Context, email string) (*service.Session, error) {
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	s := service.Session{UserID: TestUserID, Email: email}
	f.SetSession(s)
	return &s, nil
}

// SignedOut clears the session without notifying listeners.
func (f *FakeService) SignedOut() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = nil
}

// AddList adds a list directly, bypassing the call log.
func (f *FakeService) AddList(id, name string, sortOrder int64) service.List {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := service.List{
		ID:        id,
		UserID:    TestUserID,
		Name:      name,
		Color:     service.DefaultListColor,
		SortOrder: sortOrder,
		CreatedAt: f.now(),
		UpdatedAt: f.now(),
	}
	f.lists = append(f.lists, l)
	return l
}

// AddTask adds a task directly, bypassing the call log.
func (f *FakeService) AddTask(task service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.UserID == "" {
		task.UserID = TestUserID
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = f.now()
		task.UpdatedAt = f.now()
	}
	f.tasks = append(f.tasks, task)
	return task
}

// Calls returns the mutating calls made so far.
func (f *FakeService) Calls() []Call {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Call(nil), f.calls...)
}

// Task returns the stored task with id.
func (f *FakeService) Task(id string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// List returns the stored list with id.
func (f *FakeService) List(id string) (service.List, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, l := range f.lists {
		if l.ID == id {
			return l, true
		}
	}
	return service.List{}, false
}

// Session implements service.Auth.
func (f *FakeService) Session(ctx context.Context) (*service.Session, error) {
	if f.SessionErr != nil {
		return nil, f.SessionErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.session == nil {
		return nil, nil
	}
	s := *f.session
	return &s, nil
}

// SignOut implements service.Auth.
func (f *FakeService) SignOut(ctx context.Context) error {
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.mu.Lock()
	f.session = nil
	f.mu.Unlock()
	f.Notify(service.AuthSignedOut, nil)
	return nil
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context) ([]service.List, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := append([]service.List(nil), f.lists...)
	sort.SliceStable(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, list service.NewList) (service.List, error) {
	if f.CreateListErr != nil {
		return service.List{}, f.CreateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return service.List{}, service.ErrNotAuthenticated
	}
	list = list.WithDefaults()
	f.nextID++
	now := f.now()
	l := service.List{
		ID:        fmt.Sprintf("list-%d", f.nextID),
		UserID:    f.session.UserID,
		Name:      list.Name,
		Color:     list.Color,
		SortOrder: service.SortOrderAt(now) + int64(f.nextID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.lists = append(f.lists, l)
	f.calls = append(f.calls, Call{Op: "CreateList", ID: l.ID})
	return l, nil
}

// UpdateList implements service.Service.
func (f *FakeService) UpdateList(ctx context.Context, id string, patch service.ListPatch) (service.List, error) {
	f.record(Call{Op: "UpdateList", ID: id, ListPatch: patch})
	if f.UpdateListErr != nil {
		return service.List{}, f.UpdateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lists {
		if l.ID == id {
			l = patch.Apply(l)
			l.UpdatedAt = f.now()
			f.lists[i] = l
			return l, nil
		}
	}
	return service.List{}, service.ErrNotFound
}

// DeleteList implements service.Service.
func (f *FakeService) DeleteList(ctx context.Context, id string) error {
	f.record(Call{Op: "DeleteList", ID: id})
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lists {
		if l.ID == id {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			kept := f.tasks[:0]
			for _, t := range f.tasks {
				if t.ListID != id {
					kept = append(kept, t)
				}
			}
			f.tasks = kept
			return nil
		}
	}
	return service.ErrNotFound
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, listID string) ([]service.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var result []service.Task
	for _, t := range f.tasks {
		if listID == "" || t.ListID == listID {
			result = append(result, t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

// ListTasksSince implements service.Service.
func (f *FakeService) ListTasksSince(ctx context.Context, since time.Time) ([]service.Task, error) {
	if f.TasksSinceErr != nil {
		return nil, f.TasksSinceErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var result []service.Task
	for _, t := range f.tasks {
		if !t.CreatedAt.Before(since) {
			result = append(result, t)
		}
	}
	return result, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, task service.NewTask) (service.Task, error) {
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return service.Task{}, service.ErrNotAuthenticated
	}
	found := false
	for _, l := range f.lists {
		if l.ID == task.ListID {
			found = true
			break
		}
	}
	if !found {
		return service.Task{}, service.ErrNotFound
	}
	task = task.WithDefaults()
	f.nextID++
	now := f.now()
	t := service.Task{
		ID:               fmt.Sprintf("task-%d", f.nextID),
		UserID:           f.session.UserID,
		ListID:           task.ListID,
		Title:            task.Title,
		EstimatedMinutes: task.EstimatedMinutes,
		Priority:         task.Priority,
		SortOrder:        service.SortOrderAt(now) + int64(f.nextID),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	f.tasks = append(f.tasks, t)
	f.calls = append(f.calls, Call{Op: "CreateTask", ID: t.ID})
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	f.record(Call{Op: "UpdateTask", ID: id, TaskPatch: patch})
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			t = patch.Apply(t)
			t.UpdatedAt = f.now()
			f.tasks[i] = t
			return t, nil
		}
	}
	return service.Task{}, service.ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.record(Call{Op: "DeleteTask", ID: id})
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

// FocusBackground implements service.Preferences.
func (f *FakeService) FocusBackground(ctx context.Context) (string, error) {
	if f.FocusBgErr != nil {
		return "", f.FocusBgErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.focusBackground, nil
}

// SetFocusBackground implements service.Preferences.
func (f *FakeService) SetFocusBackground(ctx context.Context, value string) error {
	if f.FocusBgErr != nil {
		return f.FocusBgErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focusBackground = value
	return nil
}

func (f *FakeService) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}
