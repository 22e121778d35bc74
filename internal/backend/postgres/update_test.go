package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskrush/internal/service"
)

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestTaskUpdate_Empty(t *testing.T) {
	q, args := taskUpdate(service.TaskPatch{}, now).sql("tasks", "id", "user", taskColumns)
	assert.Empty(t, q)
	assert.Nil(t, args)
}

func TestTaskUpdate_Completion(t *testing.T) {
	q, args := taskUpdate(service.CompletionPatch(true, now), now).sql("tasks", "tid", "uid", "id")

	assert.Equal(t,
		"UPDATE tasks SET is_completed = $1, completed_at = $2, updated_at = $3 WHERE id = $4 AND user_id = $5 RETURNING id",
		q)
	require.Len(t, args, 5)
	assert.Equal(t, true, args[0])
	require.IsType(t, &time.Time{}, args[1])
	assert.Equal(t, now, *args[1].(*time.Time))
	assert.Equal(t, "tid", args[3])
	assert.Equal(t, "uid", args[4])
}

func TestTaskUpdate_ClearsNullableColumns(t *testing.T) {
	p := service.TaskPatch{
		Priority:      service.Clear[int](),
		ScheduledDate: service.Clear[time.Time](),
		CompletedAt:   service.Clear[time.Time](),
	}
	q, args := taskUpdate(p, now).sql("tasks", "tid", "uid", "id")

	assert.Contains(t, q, "priority = $1, scheduled_date = $2, completed_at = $3")
	assert.Nil(t, args[0].(*int))
	assert.Nil(t, args[1])
	assert.Nil(t, args[2].(*time.Time))
}

func TestTaskUpdate_ScheduledDateAsDate(t *testing.T) {
	day := time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC)
	_, args := taskUpdate(service.TaskPatch{ScheduledDate: service.SetTo(day)}, now).sql("tasks", "t", "u", "id")
	assert.Equal(t, "2026-03-20", args[0])
}

func TestListUpdate(t *testing.T) {
	name := "Home"
	q, args := listUpdate(service.ListPatch{Name: &name}, now).sql("lists", "lid", "uid", listColumns)
	assert.True(t, strings.HasPrefix(q, "UPDATE lists SET name = $1, updated_at = $2 WHERE id = $3 AND user_id = $4"))
	assert.Equal(t, []any{"Home", now, "lid", "uid"}, args)
}

func TestParseID(t *testing.T) {
	id, err := parseID("3F2504E0-4F89-11D3-9A0C-0305E82C3301")
	require.NoError(t, err)
	assert.Equal(t, "3f2504e0-4f89-11d3-9a0c-0305e82c3301", id)

	_, err = parseID("task-1")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, wrapError(nil))
	assert.ErrorIs(t, wrapError(pgx.ErrNoRows), service.ErrNotFound)
	assert.ErrorIs(t, wrapError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), service.ErrNotFound)
	timeout := wrapError(fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.EqualError(t, timeout, "request timed out: query: context deadline exceeded")
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "tasks_list_id_fkey"}
	assert.ErrorIs(t, wrapError(fk), service.ErrNotFound)

	other := errors.New("conn reset")
	assert.Equal(t, other, wrapError(other))
}

func TestUser_SignedOutWithoutIdentity(t *testing.T) {
	c := &Client{sessionPath: t.TempDir() + "/session.json", now: func() time.Time { return now }}

	_, err := c.ListLists(context.Background())
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)

	_, err = c.CreateTask(context.Background(), service.NewTask{Title: "x", ListID: "l"})
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)

	s, err := c.Session(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSignOut_Notifies(t *testing.T) {
	c := &Client{sessionPath: t.TempDir() + "/session.json", now: func() time.Time { return now }}
	c.session = &service.Session{UserID: "u", Email: "a@example.com"}

	var got []service.AuthEvent
	c.OnAuthStateChange(func(ev service.AuthEvent, _ *service.Session) { got = append(got, ev) })

	require.NoError(t, c.SignOut(context.Background()))
	assert.Equal(t, []service.AuthEvent{service.AuthSignedOut}, got)
	s, err := c.Session(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSchemaDefinesTables(t *testing.T) {
	for _, table := range []string{"users", "lists", "tasks", "user_preferences"} {
		assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
