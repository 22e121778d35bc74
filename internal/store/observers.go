// Package store holds the in-memory lists and tasks the client works on and
// keeps them in step with the remote service.
//
// Lists and Tasks are observable collections with synchronous mutation
// helpers. Sync runs every user action as a local apply followed by the
// remote call; a failed remote call is logged and returned, and the local
// state is left as it is.
package store

import "sync"

// EventKind identifies what changed in a collection.
type EventKind string

const (
	ListsChanged     EventKind = "lists"
	SelectionChanged EventKind = "selection"
	TasksChanged     EventKind = "tasks"
	LoadingChanged   EventKind = "loading"
)

// Event is published to subscribers after a collection changes.
type Event struct {
	Kind EventKind
	// ID is the affected list or task, when the change concerns a single record.
	ID string
}

type observers struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(Event)
}

func (o *observers) subscribe(fn func(Event)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func(Event))
	}
	id := o.nextID
	o.nextID++
	o.fns[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.fns, id)
	}
}

func (o *observers) publish(ev Event) {
	o.mu.Lock()
	fns := make([]func(Event), 0, len(o.fns))
	for i := 0; i < o.nextID; i++ {
		if fn, ok := o.fns[i]; ok {
			fns = append(fns, fn)
		}
	}
	o.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
