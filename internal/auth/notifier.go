// Package auth holds the process-wide auth session.
package auth

import (
	"sync"

	"taskrush/internal/service"
)

// Notifier is a registry of auth listeners. Backends embed it to implement
// service.Auth.OnAuthStateChange.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]service.AuthListener
}

// OnAuthStateChange registers fn. The returned func unsubscribes.
func (n *Notifier) OnAuthStateChange(fn service.AuthListener) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fns == nil {
		n.fns = make(map[int]service.AuthListener)
	}
	id := n.nextID
	n.nextID++
	n.fns[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.fns, id)
	}
}

// Notify calls every listener with event and session.
func (n *Notifier) Notify(event service.AuthEvent, session *service.Session) {
	n.mu.Lock()
	fns := make([]service.AuthListener, 0, len(n.fns))
	for i := 0; i < n.nextID; i++ {
		if fn, ok := n.fns[i]; ok {
			fns = append(fns, fn)
		}
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(event, session)
	}
}

// Listeners returns the number of registered listeners.
func (n *Notifier) Listeners() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.fns)
}
