package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"ERROR", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	assert.NotContains(t, buf.String(), "debug message")
	assert.NotContains(t, buf.String(), "info message")

	l.Warn("warn message")
	l.Error("error message")
	assert.Contains(t, buf.String(), "warn message")
	assert.Contains(t, buf.String(), "error message")
}

func TestLogger_LogFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelDebug)

	l.Info("moved task %d", 7)

	out := buf.String()
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "moved task 7")
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)

	l.WithFields(Fields{"method": "PATCH", "status": 200}).Info("request")

	out := buf.String()
	assert.Contains(t, out, "method=PATCH")
	assert.Contains(t, out, "status=200")
}

func TestLogger_EnvVarLogLevel(t *testing.T) {
	t.Setenv("TASKDECK_LOG_LEVEL", "debug")

	l := New()
	assert.Equal(t, LevelDebug, l.level)
}

func TestLogger_EnvVarLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdeck.log")
	t.Setenv("TASKDECK_LOG_FILE", path)

	l := New()
	l.Info("written to file")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "written to file")
}

func TestLogger_Configure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configured.log")

	l := New()
	require.NoError(t, l.Configure("error", path))
	l.Warn("dropped")
	l.Error("kept")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(content), "dropped"))
	assert.Contains(t, string(content), "kept")

	assert.Error(t, New().Configure("loud", ""))
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	Default.SetOutput(&buf)
	Default.SetLevel(LevelDebug)
	defer Default.SetLevel(LevelInfo)

	Debug("debug %s", "test")
	Info("info %s", "test")
	Warn("warn %s", "test")
	Error("error %s", "test")

	out := buf.String()
	for _, want := range []string{"debug test", "info test", "warn test", "error test"} {
		assert.Contains(t, out, want)
	}
}
