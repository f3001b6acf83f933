package main

import (
	"net/http"
	"testing"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/config"
	"github.com/mark3labs/taskdeck/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserChanged_LogoutDropsStoredCookie(t *testing.T) {
	dir := t.TempDir()
	client, err := api.NewClient("http://tasks.example.test")
	require.NoError(t, err)
	rt := &runtime{cfg: &config.Config{DataDir: dir}, client: client}

	client.SetCookies([]*http.Cookie{{Name: "sid", Value: "abc"}})
	rt.userChanged(&api.User{ID: 1, Username: "ana"})
	require.Len(t, state.LoadCookies(dir, client.Host()), 1)

	rt.userChanged(nil)
	assert.Empty(t, client.Cookies())
	assert.Empty(t, state.LoadCookies(dir, client.Host()))
}
