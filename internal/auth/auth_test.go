package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskrush/internal/auth"
	"taskrush/internal/service"
	"taskrush/internal/testutil"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManager_InitLoadsSessionAndNotifies(t *testing.T) {
	svc := testutil.NewFakeService()
	m := auth.NewManager(svc, quiet())

	var events []service.AuthEvent
	m.Subscribe(func(ev service.AuthEvent, s *service.Session) { events = append(events, ev) })

	require.NoError(t, m.Init(context.Background()))
	defer m.Close()

	s, err := m.RequireUser()
	require.NoError(t, err)
	assert.Equal(t, testutil.TestUserID, s.UserID)
	assert.Equal(t, []service.AuthEvent{service.AuthInitialSession}, events)

	// Second Init is a no-op.
	require.NoError(t, m.Init(context.Background()))
	assert.Len(t, events, 1)
	assert.Equal(t, 1, svc.Listeners())
}

func TestManager_ConcurrentInitSubscribesOnce(t *testing.T) {
	svc := testutil.NewFakeService()
	m := auth.NewManager(svc, quiet())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Init(context.Background()))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, svc.Listeners())

	m.Close()
	assert.Equal(t, 0, svc.Listeners())
}

func TestManager_FollowsAuthChanges(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SignedOut()
	m := auth.NewManager(svc, quiet())
	require.NoError(t, m.Init(context.Background()))

	_, err := m.RequireUser()
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)

	svc.SetSession(service.Session{UserID: "u2", Email: "b@example.com"})
	require.NotNil(t, m.Session())
	assert.Equal(t, "u2", m.Session().UserID)

	require.NoError(t, m.SignOut(context.Background()))
	assert.Nil(t, m.Session())

	m.Close()
	assert.Equal(t, 0, svc.Listeners())
	svc.SetSession(service.Session{UserID: "u3"})
	assert.Nil(t, m.Session(), "closed manager ignores changes")
}

func TestManager_InitError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SessionErr = errors.New("network down")
	m := auth.NewManager(svc, quiet())

	err := m.Init(context.Background())
	assert.ErrorIs(t, err, svc.SessionErr)
	assert.Equal(t, 0, svc.Listeners())
}

func TestManager_SignOutError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SignOutErr = errors.New("denied")
	m := auth.NewManager(svc, quiet())
	require.NoError(t, m.Init(context.Background()))
	defer m.Close()

	assert.ErrorIs(t, m.SignOut(context.Background()), svc.SignOutErr)
	assert.NotNil(t, m.Session())
}

func TestNotifier_UnsubscribeAndOrder(t *testing.T) {
	var n auth.Notifier
	var got []string
	n.OnAuthStateChange(func(service.AuthEvent, *service.Session) { got = append(got, "a") })
	unsub := n.OnAuthStateChange(func(service.AuthEvent, *service.Session) { got = append(got, "b") })
	n.OnAuthStateChange(func(service.AuthEvent, *service.Session) { got = append(got, "c") })

	n.Notify(service.AuthSignedIn, nil)
	unsub()
	n.Notify(service.AuthSignedOut, nil)

	assert.Equal(t, []string{"a", "b", "c", "a", "c"}, got)
	assert.Equal(t, 2, n.Listeners())
}

func TestIdentity_RoundTripAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	id, err := auth.LoadIdentity(path)
	require.NoError(t, err)
	assert.Nil(t, id)

	signedIn := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, auth.SaveIdentity(path, auth.Identity{Email: "a@example.com", SignedInAt: signedIn}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	id, err = auth.LoadIdentity(path)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "a@example.com", id.Email)
	assert.True(t, signedIn.Equal(id.SignedInAt))

	require.NoError(t, auth.RemoveIdentity(path))
	require.NoError(t, auth.RemoveIdentity(path))
}

func TestIdentity_MissingEmail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"user_id":"x"}`), 0600))

	_, err := auth.LoadIdentity(path)
	assert.Error(t, err)
}
