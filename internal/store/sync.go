package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskrush/internal/service"
)

// Sync applies user actions to the local collections and the remote service.
//
// Updates and deletes are optimistic: the local copy changes first, then the
// remote call is made. Creates wait for the remote record, since only the
// service mints ids. Remote failures are logged and returned; nothing is
// rolled back and nothing is retried.
type Sync struct {
	svc    service.Service
	lists  *Lists
	tasks  *Tasks
	now    func() time.Time
	logger *slog.Logger
}

// SyncOption configures a Sync.
type SyncOption func(*Sync)

// WithNow sets the clock used for completion timestamps.
func WithNow(now func() time.Time) SyncOption {
	return func(s *Sync) { s.now = now }
}

// WithLogger sets the logger for remote failures.
func WithLogger(logger *slog.Logger) SyncOption {
	return func(s *Sync) { s.logger = logger }
}

// NewSync creates a Sync over svc and the given collections.
func NewSync(svc service.Service, lists *Lists, tasks *Tasks, opts ...SyncOption) *Sync {
	s := &Sync{
		svc:    svc,
		lists:  lists,
		tasks:  tasks,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lists returns the list collection.
func (s *Sync) Lists() *Lists { return s.lists }

// Tasks returns the task collection.
func (s *Sync) Tasks() *Tasks { return s.tasks }

// LoadLists replaces the local lists with the remote ones. When nothing is
// selected yet, the first list is selected and its tasks are loaded.
func (s *Sync) LoadLists(ctx context.Context) error {
	s.lists.SetLoading(true)
	lists, err := s.svc.ListLists(ctx)
	s.lists.SetLoading(false)
	if err != nil {
		return s.failed("load lists", "", err)
	}
	s.lists.Set(lists)

	if s.lists.Selected() == "" && len(lists) > 0 {
		return s.SelectList(ctx, s.lists.All()[0].ID)
	}
	return nil
}

// SelectList selects a list and replaces the local tasks with its tasks.
func (s *Sync) SelectList(ctx context.Context, id string) error {
	s.lists.Select(id)
	if id == "" {
		s.tasks.Set(nil)
		return nil
	}
	return s.LoadTasks(ctx, id)
}

// LoadTasks replaces the local tasks with the remote tasks of a list,
// or of every list when listID is "".
func (s *Sync) LoadTasks(ctx context.Context, listID string) error {
	s.tasks.SetLoading(true)
	tasks, err := s.svc.ListTasks(ctx, listID)
	s.tasks.SetLoading(false)
	if err != nil {
		return s.failed("load tasks", listID, err)
	}
	s.tasks.Set(tasks)
	return nil
}

// CreateList creates a list remotely and adds the stored record locally.
func (s *Sync) CreateList(ctx context.Context, list service.NewList) (service.List, error) {
	created, err := s.svc.CreateList(ctx, list)
	if err != nil {
		return service.List{}, s.failed("create list", "", err)
	}
	s.lists.Add(created)
	return created, nil
}

// UpdateList patches a list locally, then remotely.
func (s *Sync) UpdateList(ctx context.Context, id string, patch service.ListPatch) error {
	s.lists.Update(id, patch)
	if _, err := s.svc.UpdateList(ctx, id, patch); err != nil {
		return s.failed("update list", id, err)
	}
	return nil
}

// DeleteList removes a list locally, then remotely. Deleting the selected
// list clears the selection and the tasks in view.
func (s *Sync) DeleteList(ctx context.Context, id string) error {
	s.lists.Remove(id)
	if s.lists.Selected() == id {
		s.lists.Select("")
		s.tasks.Set(nil)
	}
	if err := s.svc.DeleteList(ctx, id); err != nil {
		return s.failed("delete list", id, err)
	}
	return nil
}

// CreateTask creates a task remotely and adds the stored record locally.
func (s *Sync) CreateTask(ctx context.Context, task service.NewTask) (service.Task, error) {
	created, err := s.svc.CreateTask(ctx, task)
	if err != nil {
		return service.Task{}, s.failed("create task", "", err)
	}
	s.tasks.Add(created)
	return created, nil
}

// UpdateTask patches a task locally, then remotely.
func (s *Sync) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) error {
	s.tasks.Update(id, patch)
	if _, err := s.svc.UpdateTask(ctx, id, patch); err != nil {
		return s.failed("update task", id, err)
	}
	return nil
}

// ToggleTask marks a task completed now, or reopens it.
func (s *Sync) ToggleTask(ctx context.Context, id string, done bool) error {
	return s.UpdateTask(ctx, id, service.CompletionPatch(done, s.now().UTC()))
}

// DeleteTask removes a task locally, then remotely.
func (s *Sync) DeleteTask(ctx context.Context, id string) error {
	s.tasks.Remove(id)
	if err := s.svc.DeleteTask(ctx, id); err != nil {
		return s.failed("delete task", id, err)
	}
	return nil
}

// CompleteFocusSession records a finished focus session on a task. The task
// need not be in the local collection.
func (s *Sync) CompleteFocusSession(ctx context.Context, taskID string, actualMinutes float64, at time.Time) error {
	patch := service.CompletionPatch(true, at.UTC())
	patch.ActualMinutes = &actualMinutes
	return s.UpdateTask(ctx, taskID, patch)
}

func (s *Sync) failed(op, id string, err error) error {
	s.logger.Error("remote call failed", "op", op, "id", id, "error", err)
	if id != "" {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
