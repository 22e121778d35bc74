package store_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskrush/internal/service"
	"taskrush/internal/testutil"
	"taskrush/internal/timer"
)

func TestFocusSessionPersistsThroughSync(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	svc.AddList("a", "A", 1)
	svc.AddTask(service.Task{ID: "t1", ListID: "a", Title: "Write report", EstimatedMinutes: 25})

	s := newSync(svc)
	require.NoError(t, s.LoadTasks(ctx, "a"))

	tm := timer.New()
	p := timer.NewPersister(tm, s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	detach := p.Attach()
	defer detach()

	tm.Start("t1", "Write report", 25)
	for i := 0; i < 600; i++ {
		tm.Tick()
	}
	tm.Finish()
	p.Wait()

	snap := tm.Snapshot()
	assert.True(t, snap.Finished)
	assert.Equal(t, 15.0, snap.EarlyMinutes())

	local, ok := s.Tasks().Get("t1")
	require.True(t, ok)
	assert.True(t, local.IsCompleted)
	assert.Equal(t, 10.0, local.ActualMinutes)
	require.NotNil(t, local.CompletedAt)

	remote, _ := svc.Task("t1")
	assert.True(t, remote.IsCompleted)
	assert.Equal(t, 10.0, remote.ActualMinutes)

	// Dismissing the finished session writes nothing further.
	calls := len(svc.Calls())
	tm.Dismiss()
	p.Wait()
	assert.Len(t, svc.Calls(), calls)
}
