package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/mutation"
	"github.com/mark3labs/taskdeck/internal/nats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	bus, err := nats.Open(ctx, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	return NewStore(bus.JS, bus.Stream)
}

func TestScope(t *testing.T) {
	assert.Equal(t, "localhost-5000-ana", Scope("localhost:5000", "ana"))
	assert.Equal(t, "tasks-example-com-bo-smith", Scope("tasks.example.com", "Bo Smith"))
}

func TestHistory_Apply(t *testing.T) {
	h := NewHistory("s")
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	h.Apply(Entry{ID: "a", Type: TypeMutation, Action: ActionIssued, Kind: "status", TaskID: 7, Input: `{"status":"review"}`, Timestamp: t0})
	h.Apply(Entry{ID: "b", Type: TypeMutation, Action: ActionIssued, Kind: "status", TaskID: 7, Timestamp: t0.Add(time.Second)})
	h.Apply(Entry{ID: "a", Type: TypeMutation, Action: ActionSuperseded, Timestamp: t0.Add(2 * time.Second)})
	h.Apply(Entry{ID: "b", Type: TypeMutation, Action: ActionFailed, Error: "boom", Timestamp: t0.Add(3 * time.Second)})
	h.Apply(Entry{Type: TypeSession, Action: ActionLogout})

	require.Len(t, h.Mutations, 2)
	assert.Equal(t, ActionSuperseded, h.Mutations[0].Outcome)
	assert.Equal(t, `{"status":"review"}`, h.Mutations[0].Input)
	assert.True(t, h.Mutations[0].Settled())

	failed := h.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "boom", failed[0].Error)

	recent := h.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "b", recent[0].ID)
	assert.Len(t, h.Sessions, 1)
}

func TestStore_PublishAndLoad(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Publish(ctx, Entry{ID: "m1", Scope: "ana", Type: TypeMutation, Action: ActionIssued, Kind: "delete", TaskID: 3}))
	require.NoError(t, store.Publish(ctx, Entry{ID: "m1", Scope: "ana", Type: TypeMutation, Action: ActionSucceeded}))
	require.NoError(t, store.Publish(ctx, Entry{ID: "m2", Scope: "bo", Type: TypeMutation, Action: ActionIssued}))

	h, err := store.Load(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, h.Mutations, 1)
	assert.Equal(t, ActionSucceeded, h.Mutations[0].Outcome)
	assert.Equal(t, int64(3), h.Mutations[0].TaskID)

	assert.Error(t, store.Publish(ctx, Entry{Type: TypeMutation}))
}

func TestRecorder(t *testing.T) {
	store := setupStore(t)
	rec := NewRecorder(store, "localhost:5000")
	ctx := context.Background()

	// Nothing is written before a user is known.
	rec.Record(mutation.Pending{ID: "early", Kind: mutation.KindStatus, Phase: mutation.PhaseInFlight})

	rec.SetUser(&api.User{ID: 1, Username: "ana"})
	scope := rec.Scope()
	assert.Equal(t, "localhost-5000-ana", scope)

	status := api.StatusReview
	rec.Record(mutation.Pending{ID: "m1", Kind: mutation.KindStatus, TaskID: 7, Phase: mutation.PhaseInFlight, Input: api.TaskPatch{Status: &status}, IssuedAt: time.Now()})
	rec.Record(mutation.Pending{ID: "m1", Kind: mutation.KindStatus, TaskID: 7, Phase: mutation.PhaseFailed, Err: errors.New("nope")})

	rec.SetUser(nil)
	assert.Empty(t, rec.Scope())

	h, err := store.Load(ctx, scope)
	require.NoError(t, err)
	require.Len(t, h.Mutations, 1)
	m := h.Mutations[0]
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, ActionFailed, m.Outcome)
	assert.Equal(t, "nope", m.Error)
	assert.JSONEq(t, `{"status":"review"}`, m.Input)

	require.Len(t, h.Sessions, 2)
	assert.Equal(t, ActionLogin, h.Sessions[0].Action)
	assert.Equal(t, "ana", h.Sessions[0].User)
	assert.Equal(t, ActionLogout, h.Sessions[1].Action)
}
