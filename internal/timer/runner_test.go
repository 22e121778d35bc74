package timer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type tickerFactory struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *tickerFactory) New(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	tk := &fakeTicker{c: make(chan time.Time)}
	f.tickers = append(f.tickers, tk)
	return tk
}

func (f *tickerFactory) last() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tickers) == 0 {
		return nil
	}
	return f.tickers[len(f.tickers)-1]
}

func (f *tickerFactory) active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, tk := range f.tickers {
		if !tk.isStopped() {
			n++
		}
	}
	return n
}

func startRunner(t *testing.T, tm *Timer, f *tickerFactory) (cancel func(), done <-chan error) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- NewRunner(tm, WithTicker(f.New)).Run(ctx) }()
	return cancelFn, errCh
}

func sendTick(t *testing.T, f *tickerFactory) {
	t.Helper()
	require.Eventually(t, func() bool {
		tk := f.last()
		if tk == nil || tk.isStopped() {
			return false
		}
		select {
		case tk.c <- time.Now():
			return true
		case <-time.After(5 * time.Millisecond):
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestRunner_TicksWhileRunning(t *testing.T) {
	tm := newTestTimer()
	f := &tickerFactory{}
	cancel, done := startRunner(t, tm, f)
	defer cancel()

	tm.Start("t1", "Focus", 1)
	sendTick(t, f)
	sendTick(t, f)

	require.Eventually(t, func() bool { return tm.Snapshot().RemainingSeconds == 58 }, time.Second, time.Millisecond)

	cancel()
	err := <-done
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, f.active(), "ticker must be stopped on teardown")
}

func TestRunner_NoTickerWhileIdleOrPaused(t *testing.T) {
	tm := newTestTimer()
	f := &tickerFactory{}
	cancel, _ := startRunner(t, tm, f)
	defer cancel()

	time.Sleep(10 * time.Millisecond)
	assert.Nil(t, f.last(), "no ticker without a session")

	tm.Start("t1", "Focus", 1)
	require.Eventually(t, func() bool { return f.active() == 1 }, time.Second, time.Millisecond)

	tm.Pause()
	require.Eventually(t, func() bool { return f.active() == 0 }, time.Second, time.Millisecond)

	tm.Resume()
	require.Eventually(t, func() bool { return f.active() == 1 }, time.Second, time.Millisecond)
}

func TestRunner_StopsTickerOnNaturalCompletion(t *testing.T) {
	tm := newTestTimer()
	f := &tickerFactory{}
	cancel, _ := startRunner(t, tm, f)
	defer cancel()

	tm.Start("t1", "Tiny", 1.0/60)
	sendTick(t, f)

	require.Eventually(t, func() bool { return tm.Snapshot().Finished }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return f.active() == 0 }, time.Second, time.Millisecond)
}

func TestRunner_NoTickerForZeroLengthSession(t *testing.T) {
	tm := newTestTimer()
	f := &tickerFactory{}
	cancel, _ := startRunner(t, tm, f)
	defer cancel()

	tm.Start("t1", "Empty", 0)
	snap := tm.Snapshot()
	assert.True(t, snap.IsRunning)
	assert.Equal(t, 0, snap.RemainingSeconds)

	time.Sleep(10 * time.Millisecond)
	assert.Nil(t, f.last(), "nothing to count down")

	tm.Finish()
	assert.True(t, tm.Snapshot().Finished)
	assert.Nil(t, f.last())
}
