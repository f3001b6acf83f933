package state

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultUIState(t *testing.T) {
	st := DefaultUIState()
	require.NotNil(t, st)
	assert.True(t, st.Sidebar.Visible)
	assert.Nil(t, st.Board.Category)
}

func TestLoadNonExistent(t *testing.T) {
	st := Load(filepath.Join(t.TempDir(), "missing"))
	require.NotNil(t, st)
	assert.True(t, st.Sidebar.Visible)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	cat := int64(4)
	require.NoError(t, Save(dir, &UIState{
		Sidebar: SidebarState{Visible: false},
		Board:   BoardState{Category: &cat, Lane: 2},
	}))

	loaded := Load(dir)
	assert.False(t, loaded.Sidebar.Visible)
	require.NotNil(t, loaded.Board.Category)
	assert.Equal(t, int64(4), *loaded.Board.Category)
	assert.Equal(t, 2, loaded.Board.Lane)
}

func TestLoadCorrupted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, uiStateFile), []byte("{not json"), 0644))
	assert.Equal(t, DefaultUIState(), Load(dir))
}

func TestCookies(t *testing.T) {
	dir := t.TempDir()

	assert.Empty(t, LoadCookies(dir, "localhost:5000"))

	require.NoError(t, SaveCookies(dir, "localhost:5000", []*http.Cookie{
		{Name: "sid", Value: "abc", Path: "/"},
		{Name: "old", Value: "x", Expires: time.Now().Add(-time.Hour)},
	}))
	require.NoError(t, SaveCookies(dir, "other:80", []*http.Cookie{{Name: "sid", Value: "zzz"}}))

	got := LoadCookies(dir, "localhost:5000")
	require.Len(t, got, 1)
	assert.Equal(t, "abc", got[0].Value)

	info, err := os.Stat(filepath.Join(dir, cookieFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, SaveCookies(dir, "localhost:5000", nil))
	assert.Empty(t, LoadCookies(dir, "localhost:5000"))
	assert.Len(t, LoadCookies(dir, "other:80"), 1)
}
