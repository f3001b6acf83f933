package testfixtures

import (
	"strings"
	"testing"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	uv "github.com/charmbracelet/ultraviolet"
)

// Initialize test environment
func init() {
	// Ascii keeps rendered output free of escape sequences.
	lipgloss.Writer.Profile = colorprofile.Ascii
}

// Canonical terminal size for all tests
const (
	TestTermWidth  = 140
	TestTermHeight = 40
)

// Conservative timeout for WaitFor (CI compatibility)
const (
	DefaultWaitDuration  = 5 * time.Second
	DefaultCheckInterval = 10 * time.Millisecond
)

// Render draws into a test-sized screen buffer and returns the plain
// text, without styling.
func Render(draw func(scr uv.Screen, area uv.Rectangle)) string {
	canvas := uv.NewScreenBuffer(TestTermWidth, TestTermHeight)
	draw(canvas, canvas.Bounds())
	return canvas.String()
}

// WaitFor polls cond until it holds or the default timeout passes.
func WaitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(DefaultWaitDuration)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(DefaultCheckInterval)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

// Contains checks if a string contains a substring.
func Contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
