package timer

import (
	"context"
	"time"
)

// Interval is the countdown resolution.
const Interval = time.Second

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

// NewStdTicker wraps time.NewTicker.
func NewStdTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

// Runner owns the interval that ticks a Timer. The ticker exists only while
// the session is running and is stopped when Run returns.
type Runner struct {
	timer     *Timer
	interval  time.Duration
	newTicker func(time.Duration) Ticker
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTicker replaces the ticker factory.
func WithTicker(fn func(time.Duration) Ticker) RunnerOption {
	return func(r *Runner) { r.newTicker = fn }
}

// NewRunner creates a Runner for t.
func NewRunner(t *Timer, opts ...RunnerOption) *Runner {
	r := &Runner{
		timer:     t,
		interval:  Interval,
		newTicker: NewStdTicker,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run ticks the timer until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	wake := make(chan struct{}, 1)
	unsubscribe := r.timer.Subscribe(func(tr Transition) {
		if tr.Kind == KindStart || tr.Prev.IsRunning != tr.Next.IsRunning {
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	var ticker Ticker
	var tickC <-chan time.Time
	stop := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}
	defer stop()

	for {
		// A zero-length session can never tick to completion.
		if snap := r.timer.Snapshot(); snap.IsRunning && snap.RemainingSeconds > 0 {
			if ticker == nil {
				ticker = r.newTicker(r.interval)
				tickC = ticker.C()
			}
		} else {
			stop()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
			// Restart the interval so a new or resumed session gets a full second.
			stop()
		case <-tickC:
			r.timer.Tick()
		}
	}
}
