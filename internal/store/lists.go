package store

import (
	"sort"
	"sync"

	"taskrush/internal/service"
)

// Lists is the local copy of the user's lists plus the current selection.
type Lists struct {
	mu       sync.RWMutex
	items    []service.List
	selected string
	loading  bool
	obs      observers
}

// NewLists creates an empty collection.
func NewLists() *Lists {
	return &Lists{}
}

// Subscribe registers fn for changes. The returned func unsubscribes.
func (l *Lists) Subscribe(fn func(Event)) (unsubscribe func()) {
	return l.obs.subscribe(fn)
}

// Set replaces the collection.
func (l *Lists) Set(lists []service.List) {
	l.mu.Lock()
	l.items = append([]service.List(nil), lists...)
	l.mu.Unlock()
	l.obs.publish(Event{Kind: ListsChanged})
}

// Add appends a list.
func (l *Lists) Add(list service.List) {
	l.mu.Lock()
	l.items = append(l.items, list)
	l.mu.Unlock()
	l.obs.publish(Event{Kind: ListsChanged, ID: list.ID})
}

// Update merges patch into the list with id. Reports whether it was found.
func (l *Lists) Update(id string, patch service.ListPatch) bool {
	l.mu.Lock()
	found := false
	for i := range l.items {
		if l.items[i].ID == id {
			l.items[i] = patch.Apply(l.items[i])
			found = true
			break
		}
	}
	l.mu.Unlock()
	if found {
		l.obs.publish(Event{Kind: ListsChanged, ID: id})
	}
	return found
}

// Remove drops the list with id. Reports whether it was found.
func (l *Lists) Remove(id string) bool {
	l.mu.Lock()
	found := false
	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			found = true
			break
		}
	}
	l.mu.Unlock()
	if found {
		l.obs.publish(Event{Kind: ListsChanged, ID: id})
	}
	return found
}

// Get returns the list with id.
func (l *Lists) Get(id string) (service.List, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, list := range l.items {
		if list.ID == id {
			return list, true
		}
	}
	return service.List{}, false
}

// All returns the lists ordered by sort order, ties in insertion order.
func (l *Lists) All() []service.List {
	l.mu.RLock()
	out := append([]service.List(nil), l.items...)
	l.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

// Len returns the number of lists.
func (l *Lists) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Select makes id the selected list. "" clears the selection.
func (l *Lists) Select(id string) {
	l.mu.Lock()
	changed := l.selected != id
	l.selected = id
	l.mu.Unlock()
	if changed {
		l.obs.publish(Event{Kind: SelectionChanged, ID: id})
	}
}

// Selected returns the selected list id, or "".
func (l *Lists) Selected() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.selected
}

// SetLoading sets the loading flag.
func (l *Lists) SetLoading(loading bool) {
	l.mu.Lock()
	changed := l.loading != loading
	l.loading = loading
	l.mu.Unlock()
	if changed {
		l.obs.publish(Event{Kind: LoadingChanged})
	}
}

// Loading reports whether a load is in progress.
func (l *Lists) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}
