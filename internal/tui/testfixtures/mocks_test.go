package testfixtures

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/stretchr/testify/require"
)

func TestFakeRemote_Session(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := NewFakeRemote(false)

	_, err := f.CurrentUser(ctx)
	require.ErrorIs(t, err, api.ErrUnauthenticated)

	_, err = f.Login(ctx, api.Credentials{Username: FixedUsername, Password: "wrong"})
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, 401, se.Code)

	u, err := f.Login(ctx, api.Credentials{Username: FixedUsername, Password: FixedPassword})
	require.NoError(t, err)
	require.Equal(t, FixedUsername, u.Username)
	require.True(t, f.LoggedIn())

	require.NoError(t, f.Logout(ctx))
	require.False(t, f.LoggedIn())
}

func TestFakeRemote_Tasks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := NewFakeRemote(true)

	status := api.StatusCompleted
	require.NoError(t, f.UpdateTask(ctx, 1, api.TaskPatch{Status: &status}))
	got, ok := f.Task(1)
	require.True(t, ok)
	require.Equal(t, api.StatusCompleted, got.Status)
	require.Equal(t, "Write report", got.Title)

	err := f.UpdateTask(ctx, 999, api.TaskPatch{Status: &status})
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, 404, se.Code)

	created, err := f.CreateTask(ctx, api.NewTask{Title: "New", Status: api.StatusPending})
	require.NoError(t, err)
	require.Len(t, f.Created, 1)

	require.NoError(t, f.DeleteTask(ctx, created.ID))
	_, ok = f.Task(created.ID)
	require.False(t, ok)

	tasks, err := f.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, len(Tasks()))
	require.Equal(t, 1, f.ListTasksCalls)
}
