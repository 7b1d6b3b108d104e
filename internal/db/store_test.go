package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "dm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewStore(database)
}

func TestCreateSession_RecordsStartEvent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateSession(ctx, "s-1", "Mira", "tavern"))

	events, err := store.Events(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventSessionStarted, events[0].Type)
	assert.Equal(t, "Mira", events[0].Actor)

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s-1", sessions[0].SessionID)
	assert.Equal(t, "tavern", sessions[0].Location)
}

func TestAppendEvent_PreservesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateSession(ctx, "s-1", "Mira", ""))

	first := model.GameplayEvent{Type: model.EventActionResolved, Description: "sneaks past", Actor: "Mira"}
	second := model.GameplayEvent{Type: model.EventActionImpossible, Description: "tries to fly", Actor: "Mira"}
	require.NoError(t, store.AppendEvent(ctx, "s-1", first))
	require.NoError(t, store.AppendEvent(ctx, "s-1", second))

	events, err := store.Events(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "sneaks past", events[1].Description)
	assert.Equal(t, model.EventActionImpossible, events[2].Type)
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateSession(ctx, "s-1", "Mira", ""))

	require.NoError(t, store.SaveSnapshot(ctx, "s-1", `{"state": 1}`))
	require.NoError(t, store.SaveSnapshot(ctx, "s-1", `{"state": 2}`))

	blob, err := store.LoadSnapshot(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, `{"state": 2}`, blob)

	missing, err := store.LoadSnapshot(ctx, "s-2")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestUpdateSessionLocation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateSession(ctx, "s-1", "Mira", "tavern"))
	require.NoError(t, store.UpdateSessionLocation(ctx, "s-1", "sewers"))

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "sewers", sessions[0].Location)
}
