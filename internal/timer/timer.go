// Package timer implements the single focus-session countdown.
//
// A Timer holds at most one session, bound to a task by id and a title
// snapshot. It never looks the task up: the task may be edited or deleted
// elsewhere while the session runs. Every state change is published to
// subscribers as a Transition; the Runner drives the one-second tick and the
// Persister writes the result when a session finishes.
package timer

import (
	"math"
	"sync"
	"time"
)

// State is the lifecycle state of the session.
type State int

const (
	Idle State = iota
	Running
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Snapshot is an immutable copy of the session.
type Snapshot struct {
	TaskID           string
	TaskTitle        string
	ExpectedMinutes  float64
	RemainingSeconds int
	TotalSeconds     int
	IsRunning        bool
	StartedAt        time.Time
	Finished         bool
}

// State derives the lifecycle state.
func (s Snapshot) State() State {
	switch {
	case s.TaskID == "":
		return Idle
	case s.Finished:
		return Finished
	case s.IsRunning:
		return Running
	default:
		return Paused
	}
}

// Kind names the operation that produced a transition.
type Kind string

const (
	KindStart   Kind = "start"
	KindPause   Kind = "pause"
	KindResume  Kind = "resume"
	KindTick    Kind = "tick"
	KindFinish  Kind = "finish"
	KindReset   Kind = "reset"
	KindStop    Kind = "stop"
	KindDismiss Kind = "dismiss"
)

// Transition is a state change published to subscribers.
type Transition struct {
	Kind Kind
	Prev Snapshot
	Next Snapshot
}

// Completed reports whether this transition is the finished edge.
func (t Transition) Completed() bool {
	return !t.Prev.Finished && t.Next.Finished
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock sets the clock used to stamp StartedAt.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) { t.now = now }
}

// Timer is the focus-session state machine. It is safe for concurrent use;
// subscribers are called after the lock is released, in registration order.
type Timer struct {
	mu        sync.Mutex
	s         Snapshot
	now       func() time.Time
	nextID    int
	listeners map[int]func(Transition)
	order     []int
}

// New creates an idle Timer.
func New(opts ...Option) *Timer {
	t := &Timer{
		now:       time.Now,
		listeners: make(map[int]func(Transition)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Snapshot returns a copy of the current session.
func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s
}

// Subscribe registers fn for every transition. The returned func unsubscribes.
func (t *Timer) Subscribe(fn func(Transition)) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	t.order = append(t.order, id)
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, id)
		for i, v := range t.order {
			if v == id {
				t.order = append(t.order[:i], t.order[i+1:]...)
				break
			}
		}
	}
}

// Start binds a new session to a task, overwriting any session in progress.
// A non-positive expectedMinutes gives a running session with nothing left
// to count; only Finish or Stop end it.
func (t *Timer) Start(taskID, title string, expectedMinutes float64) {
	sec := int(math.Round(expectedMinutes * 60))
	if sec < 0 {
		sec = 0
	}
	t.apply(KindStart, func(s *Snapshot) bool {
		*s = Snapshot{
			TaskID:           taskID,
			TaskTitle:        title,
			ExpectedMinutes:  expectedMinutes,
			RemainingSeconds: sec,
			TotalSeconds:     sec,
			IsRunning:        true,
			StartedAt:        t.now(),
		}
		return true
	})
}

// Pause stops the countdown. No-op unless running.
func (t *Timer) Pause() {
	t.apply(KindPause, func(s *Snapshot) bool {
		if !s.IsRunning {
			return false
		}
		s.IsRunning = false
		return true
	})
}

// Resume restarts the countdown of a paused session.
// No-op when running, idle or finished.
func (t *Timer) Resume() {
	t.apply(KindResume, func(s *Snapshot) bool {
		if s.IsRunning || s.TaskID == "" || s.Finished {
			return false
		}
		s.IsRunning = true
		return true
	})
}

// Tick advances a running session by one second. Reaching zero finishes
// the session in the same transition. No-op unless running with time left.
func (t *Timer) Tick() {
	t.apply(KindTick, func(s *Snapshot) bool {
		if !s.IsRunning || s.RemainingSeconds <= 0 {
			return false
		}
		s.RemainingSeconds--
		if s.RemainingSeconds <= 0 {
			s.IsRunning = false
			s.Finished = true
		}
		return true
	})
}

// Finish completes the session now, whatever time is left.
func (t *Timer) Finish() {
	t.apply(KindFinish, func(s *Snapshot) bool {
		if s.TaskID == "" || s.Finished {
			return false
		}
		s.IsRunning = false
		s.Finished = true
		return true
	})
}

// Reset returns the timer to idle.
func (t *Timer) Reset() { t.reset(KindReset) }

// Stop abandons the session. Same effect as Reset.
func (t *Timer) Stop() { t.reset(KindStop) }

// Dismiss clears a finished session before the next one. Same effect as Reset.
func (t *Timer) Dismiss() { t.reset(KindDismiss) }

func (t *Timer) reset(kind Kind) {
	t.apply(kind, func(s *Snapshot) bool {
		*s = Snapshot{}
		return true
	})
}

func (t *Timer) apply(kind Kind, fn func(s *Snapshot) bool) {
	t.mu.Lock()
	prev := t.s
	if !fn(&t.s) {
		t.mu.Unlock()
		return
	}
	tr := Transition{Kind: kind, Prev: prev, Next: t.s}
	listeners := make([]func(Transition), 0, len(t.order))
	for _, id := range t.order {
		listeners = append(listeners, t.listeners[id])
	}
	t.mu.Unlock()

	for _, l := range listeners {
		l(tr)
	}
}
