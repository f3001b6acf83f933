package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config lookups at a temp dir and clears TASKDECK_* env.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	origWd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	require.NoError(t, os.Chdir(tmpDir))

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	for key := range defaults {
		name := "TASKDECK_" + strings.ToUpper(key)
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
	return tmpDir
}

func TestGlobalPath(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		assert.Equal(t, "/custom/config/taskdeck/taskdeck.yml", GlobalPath())
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		got := GlobalPath()
		assert.True(t, filepath.IsAbs(got))
		assert.Equal(t, "taskdeck.yml", filepath.Base(got))
	})
}

func TestExists(t *testing.T) {
	isolate(t)

	assert.False(t, Exists())

	require.NoError(t, os.WriteFile(ProjectPath(), []byte("api_url: http://x\n"), 0644))
	assert.True(t, Exists())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.APIURL)
	assert.Equal(t, ".taskdeck", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Journal)
	require.NoError(t, cfg.Validate())

	timeout, err := cfg.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, timeout)
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)

	global := Default()
	global.APIURL = "http://global:5000"
	global.LogLevel = "warn"
	require.NoError(t, WriteGlobal(global))

	t.Run("global config applies", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://global:5000", cfg.APIURL)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	project := Default()
	project.APIURL = "http://project:5000"
	require.NoError(t, WriteProject(project))

	t.Run("project overrides global", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://project:5000", cfg.APIURL)
	})

	t.Run("env overrides files", func(t *testing.T) {
		t.Setenv("TASKDECK_API_URL", "http://env:5000")
		t.Setenv("TASKDECK_JOURNAL", "false")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://env:5000", cfg.APIURL)
		assert.False(t, cfg.Journal)
	})
}

func TestWriteProject(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.DataDir = ".project"
	cfg.RedisURL = "redis://localhost:6379/0"
	require.NoError(t, WriteProject(cfg))

	data, err := os.ReadFile(ProjectPath())
	require.NoError(t, err)
	content := string(data)
	for _, field := range []string{
		"api_url: http://localhost:5000",
		"data_dir: .project",
		"request_timeout: 15s",
		"journal: true",
		"redis_url: redis://localhost:6379/0",
	} {
		assert.Contains(t, content, field)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.RequestTimeout = "soon"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.APIURL = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.ToastDuration = ""
	ttl, err := cfg.ToastTTL()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, ttl)
}
