package timer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completion struct {
	taskID  string
	minutes float64
	at      time.Time
}

type recordingCompleter struct {
	mu    sync.Mutex
	calls []completion
	err   error
}

func (r *recordingCompleter) CompleteFocusSession(ctx context.Context, taskID string, minutes float64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, completion{taskID, minutes, at})
	return r.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPersister(tm *Timer, c Completer) *Persister {
	p := NewPersister(tm, c, quietLogger())
	p.now = func() time.Time { return fixedNow.Add(time.Hour) }
	return p
}

func TestPersister_NaturalCompletionWritesOnce(t *testing.T) {
	tm := newTestTimer()
	c := &recordingCompleter{}
	p := newTestPersister(tm, c)
	detach := p.Attach()
	defer detach()

	tm.Start("t1", "Write report", 25)
	tickN(tm, 1500)
	tickN(tm, 20)
	tm.Finish()
	p.Wait()

	require.Len(t, c.calls, 1)
	assert.Equal(t, completion{"t1", 25, fixedNow.Add(time.Hour)}, c.calls[0])
}

func TestPersister_ManualFinish(t *testing.T) {
	tm := newTestTimer()
	c := &recordingCompleter{}
	p := newTestPersister(tm, c)
	defer p.Attach()()

	tm.Start("t1", "Write report", 25)
	tickN(tm, 600)
	tm.Finish()
	tm.Finish()
	p.Wait()

	require.Len(t, c.calls, 1)
	assert.Equal(t, 10.0, c.calls[0].minutes)
}

func TestPersister_NoWriteOnStopOrPause(t *testing.T) {
	tm := newTestTimer()
	c := &recordingCompleter{}
	p := newTestPersister(tm, c)
	defer p.Attach()()

	tm.Start("t1", "a", 25)
	tickN(tm, 10)
	tm.Pause()
	tm.Resume()
	tm.Stop()
	p.Wait()

	assert.Empty(t, c.calls)
}

func TestPersister_EachSessionPersistsSeparately(t *testing.T) {
	tm := newTestTimer()
	c := &recordingCompleter{}
	p := newTestPersister(tm, c)
	defer p.Attach()()

	tm.Start("t1", "a", 1)
	tm.Finish()
	tm.Dismiss()
	tm.Start("t2", "b", 1)
	tickN(tm, 60)
	p.Wait()

	require.Len(t, c.calls, 2)
	ids := []string{c.calls[0].taskID, c.calls[1].taskID}
	assert.ElementsMatch(t, []string{"t1", "t2"}, ids)
}

func TestPersister_FailureKeepsFinishedState(t *testing.T) {
	tm := newTestTimer()
	c := &recordingCompleter{err: errors.New("network down")}
	p := newTestPersister(tm, c)
	defer p.Attach()()

	tm.Start("t1", "a", 25)
	tm.Finish()
	p.Wait()

	require.Len(t, c.calls, 1)
	s := tm.Snapshot()
	assert.True(t, s.Finished)
	assert.Equal(t, "t1", s.TaskID)
}
