package prefs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskrush/internal/testutil"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "one"))
	require.NoError(t, s.Set(ctx, "k", "two"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyFocusBackground, "forest.jpg"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(ctx, KeyFocusBackground)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "forest.jpg", v)
}

func TestBackground_RemoteWins(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	svc := testutil.NewFakeService()
	require.NoError(t, svc.SetFocusBackground(ctx, "remote.jpg"))
	require.NoError(t, s.Set(ctx, KeyFocusBackground, "local.jpg"))

	v, err := s.Background(ctx, svc, nil)
	require.NoError(t, err)
	assert.Equal(t, "remote.jpg", v)

	cached, _, _ := s.Get(ctx, KeyFocusBackground)
	assert.Equal(t, "remote.jpg", cached)
}

func TestBackground_FallsBackToCache(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	require.NoError(t, s.Set(ctx, KeyFocusBackground, "local.jpg"))

	svc := testutil.NewFakeService()
	v, err := s.Background(ctx, svc, nil)
	require.NoError(t, err)
	assert.Equal(t, "local.jpg", v, "empty remote")

	svc.FocusBgErr = errors.New("offline")
	v, err = s.Background(ctx, svc, nil)
	require.NoError(t, err)
	assert.Equal(t, "local.jpg", v, "remote error")

	v, err = s.Background(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "local.jpg", v, "no remote")
}

func TestSetBackground(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	svc := testutil.NewFakeService()

	require.NoError(t, s.SetBackground(ctx, svc, "sea.jpg"))
	remote, _ := svc.FocusBackground(ctx)
	assert.Equal(t, "sea.jpg", remote)

	require.NoError(t, s.SetBackground(ctx, svc, ""))
	_, ok, _ := s.Get(ctx, KeyFocusBackground)
	assert.False(t, ok)
	remote, _ = svc.FocusBackground(ctx)
	assert.Equal(t, "", remote)

	svc.FocusBgErr = errors.New("offline")
	err := s.SetBackground(ctx, svc, "x.jpg")
	assert.ErrorIs(t, err, svc.FocusBgErr)
	v, _, _ := s.Get(ctx, KeyFocusBackground)
	assert.Equal(t, "x.jpg", v, "local write kept")
}
