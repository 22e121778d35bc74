package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskrush/internal/service"
)

// fakeAPI serves the subset of the Tasks API the client uses.
type fakeAPI struct {
	mu     sync.Mutex
	lists  []*tasks.TaskList
	tasks  map[string]*tasks.Task // task id -> task
	listOf map[string]string      // task id -> list id
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(path, "/users/@me/lists") && r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(&tasks.TaskLists{Items: f.lists})

	case strings.Contains(path, "/lists/") && strings.HasSuffix(path, "/tasks"):
		listID := strings.TrimSuffix(path[strings.Index(path, "/lists/")+len("/lists/"):], "/tasks")
		if r.Method == http.MethodPost {
			var t tasks.Task
			json.NewDecoder(r.Body).Decode(&t)
			t.Id = "t" + string(rune('0'+len(f.tasks)+1))
			t.Updated = "2026-03-14T09:00:00.000Z"
			f.tasks[t.Id] = &t
			f.listOf[t.Id] = listID
			json.NewEncoder(w).Encode(&t)
			return
		}
		var items []*tasks.Task
		for id, t := range f.tasks {
			if f.listOf[id] == listID {
				items = append(items, t)
			}
		}
		json.NewEncoder(w).Encode(&tasks.Tasks{Items: items})

	case strings.Contains(path, "/tasks/"):
		id := path[strings.LastIndex(path, "/")+1:]
		t, ok := f.tasks[id]
		if !ok {
			http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodPatch:
			var patch tasks.Task
			json.NewDecoder(r.Body).Decode(&patch)
			patch.Id = id
			patch.Updated = "2026-03-14T10:00:00.000Z"
			f.tasks[id] = &patch
			t = &patch
		case http.MethodDelete:
			delete(f.tasks, id)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		json.NewEncoder(w).Encode(t)

	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotImplemented)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{
		lists: []*tasks.TaskList{
			{Id: "L1", Title: "Work", Updated: "2026-03-01T08:00:00.000Z"},
			{Id: "L2", Title: "Home", Updated: "2026-03-02T08:00:00.000Z"},
		},
		tasks:  make(map[string]*tasks.Task),
		listOf: make(map[string]string),
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := NewWithHTTPClient(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return c, api
}

func TestClient_ListLists(t *testing.T) {
	c, _ := newTestClient(t)

	lists, err := c.ListLists(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "Work", lists[0].Name)
	assert.Equal(t, int64(0), lists[0].SortOrder)
	assert.Equal(t, int64(1), lists[1].SortOrder)
	assert.Equal(t, service.DefaultListColor, lists[1].Color)
}

func TestClient_CreateAndCompleteTask(t *testing.T) {
	ctx := context.Background()
	c, api := newTestClient(t)

	p := 1
	created, err := c.CreateTask(ctx, service.NewTask{Title: "Write report", ListID: "L1", Priority: &p})
	require.NoError(t, err)
	assert.Equal(t, "L1", created.ListID)
	assert.Equal(t, 25.0, created.EstimatedMinutes)
	require.NotNil(t, created.Priority)
	assert.Equal(t, 1, *created.Priority)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC), created.CreatedAt)
	assert.Equal(t, "", created.Notes)

	done := time.Date(2026, 3, 14, 9, 40, 0, 0, time.UTC)
	patch := service.CompletionPatch(true, done)
	actual := 40.0
	patch.ActualMinutes = &actual

	updated, err := c.UpdateTask(ctx, created.ID, patch)
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, 40.0, updated.ActualMinutes)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, done, *updated.CompletedAt)

	stored := api.tasks[created.ID]
	assert.Equal(t, "completed", stored.Status)
	assert.Contains(t, stored.Notes, "actual=40")
}

func TestClient_UpdateUnknownTask(t *testing.T) {
	c, _ := newTestClient(t)
	title := "x"
	_, err := c.UpdateTask(context.Background(), "missing", service.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestClient_SignedOut(t *testing.T) {
	c, _ := newTestClient(t)

	var events []service.AuthEvent
	c.OnAuthStateChange(func(ev service.AuthEvent, _ *service.Session) { events = append(events, ev) })

	require.NoError(t, c.SignOut(context.Background()))
	assert.Equal(t, []service.AuthEvent{service.AuthSignedOut}, events)

	s, err := c.Session(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = c.ListLists(context.Background())
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)
}

func TestToAPITask_ReopenClearsCompletion(t *testing.T) {
	body := toAPITask(service.Task{Title: "x", EstimatedMinutes: 25})
	assert.Equal(t, "needsAction", body.Status)
	assert.Nil(t, body.Completed)
	assert.Contains(t, body.NullFields, "Completed")
	assert.Contains(t, body.NullFields, "Due")
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, wrapError(nil))
	assert.ErrorIs(t, wrapError(assert.AnError), assert.AnError)
	assert.ErrorIs(t, wrapError(errString("googleapi: Error 401: invalid")), service.ErrNotAuthenticated)
	assert.ErrorIs(t, wrapError(errString("googleapi: Error 404: gone")), service.ErrNotFound)
	assert.EqualError(t, wrapError(errString("Get ...: context deadline exceeded")), "request timed out: Get ...: context deadline exceeded")
	assert.ErrorIs(t, wrapError(fmt.Errorf("Get ...: %w", context.DeadlineExceeded)), context.DeadlineExceeded)
}

type errString string

func (e errString) Error() string { return string(e) }
