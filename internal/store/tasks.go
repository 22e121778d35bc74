package store

import (
	"sort"
	"sync"

	"taskrush/internal/service"
)

// Tasks is the local copy of the tasks in view.
type Tasks struct {
	mu      sync.RWMutex
	items   []service.Task
	loading bool
	obs     observers
}

// NewTasks creates an empty collection.
func NewTasks() *Tasks {
	return &Tasks{}
}

// Subscribe registers fn for changes. The returned func unsubscribes.
func (t *Tasks) Subscribe(fn func(Event)) (unsubscribe func()) {
	return t.obs.subscribe(fn)
}

// Set replaces the collection.
func (t *Tasks) Set(tasks []service.Task) {
	t.mu.Lock()
	t.items = append([]service.Task(nil), tasks...)
	t.mu.Unlock()
	t.obs.publish(Event{Kind: TasksChanged})
}

// Add appends a task.
func (t *Tasks) Add(task service.Task) {
	t.mu.Lock()
	t.items = append(t.items, task)
	t.mu.Unlock()
	t.obs.publish(Event{Kind: TasksChanged, ID: task.ID})
}

// Update merges patch into the task with id. Reports whether it was found.
func (t *Tasks) Update(id string, patch service.TaskPatch) bool {
	t.mu.Lock()
	found := false
	for i := range t.items {
		if t.items[i].ID == id {
			t.items[i] = patch.Apply(t.items[i])
			found = true
			break
		}
	}
	t.mu.Unlock()
	if found {
		t.obs.publish(Event{Kind: TasksChanged, ID: id})
	}
	return found
}

// Remove drops the task with id. Reports whether it was found.
func (t *Tasks) Remove(id string) bool {
	t.mu.Lock()
	found := false
	for i := range t.items {
		if t.items[i].ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			found = true
			break
		}
	}
	t.mu.Unlock()
	if found {
		t.obs.publish(Event{Kind: TasksChanged, ID: id})
	}
	return found
}

// Get returns the task with id.
func (t *Tasks) Get(id string) (service.Task, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, task := range t.items {
		if task.ID == id {
			return task, true
		}
	}
	return service.Task{}, false
}

// All returns the tasks in insertion/fetch order.
func (t *Tasks) All() []service.Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]service.Task(nil), t.items...)
}

// Sorted returns the tasks ordered by priority, most urgent first.
// Tasks without a priority come last; ties keep fetch order.
func (t *Tasks) Sorted() []service.Task {
	out := t.All()
	SortByPriority(out)
	return out
}

// ForList returns the tasks of one list ordered by priority.
func (t *Tasks) ForList(listID string) []service.Task {
	var out []service.Task
	for _, task := range t.All() {
		if task.ListID == listID {
			out = append(out, task)
		}
	}
	SortByPriority(out)
	return out
}

// SetLoading sets the loading flag.
func (t *Tasks) SetLoading(loading bool) {
	t.mu.Lock()
	changed := t.loading != loading
	t.loading = loading
	t.mu.Unlock()
	if changed {
		t.obs.publish(Event{Kind: LoadingChanged})
	}
}

// Loading reports whether a load is in progress.
func (t *Tasks) Loading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loading
}

// SortByPriority stable-sorts tasks by priority, unset priorities last.
func SortByPriority(tasks []service.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].PriorityValue() < tasks[j].PriorityValue()
	})
}
