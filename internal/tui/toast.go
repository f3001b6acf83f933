package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/taskdeck/internal/mutation"
	"github.com/mark3labs/taskdeck/internal/tui/theme"
)

// ToastDismissMsg is sent when a toast's lifetime ends. Seq ties it to the
// toast that scheduled it so a newer toast is not dismissed early.
type ToastDismissMsg struct {
	Seq int
}

// Toast is a transient notification in the bottom-right corner.
type Toast struct {
	title     string
	message   string
	level     mutation.Level
	visible   bool
	ttl       time.Duration
	dismissAt time.Time
	seq       int
}

// NewToast creates a toast whose messages live for ttl.
func NewToast(ttl time.Duration) *Toast {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Toast{ttl: ttl}
}

// Show displays a notice, replacing any visible one.
func (t *Toast) Show(n mutation.Notice) tea.Cmd {
	t.title = n.Title
	t.message = n.Message
	t.level = n.Level
	t.visible = true
	t.dismissAt = time.Now().Add(t.ttl)
	t.seq++
	seq := t.seq
	return tea.Tick(t.ttl, func(time.Time) tea.Msg {
		return ToastDismissMsg{Seq: seq}
	})
}

// Success is shorthand for a success notice.
func (t *Toast) Success(msg string) tea.Cmd {
	return t.Show(mutation.Notice{Level: mutation.LevelSuccess, Title: "Success", Message: msg})
}

// Failure is shorthand for a failure notice.
func (t *Toast) Failure(title, msg string) tea.Cmd {
	return t.Show(mutation.Notice{Level: mutation.LevelFailure, Title: title, Message: msg})
}

// Update handles dismissal.
func (t *Toast) Update(msg tea.Msg) tea.Cmd {
	if m, ok := msg.(ToastDismissMsg); ok && m.Seq == t.seq {
		t.visible = false
		t.title = ""
		t.message = ""
	}
	return nil
}

// View renders the toast box, or "" when hidden.
func (t *Toast) View(maxWidth int) string {
	if !t.visible || (t.message == "" && t.title == "") {
		return ""
	}
	s := theme.Current().S()
	style := s.ToastSuccess
	if t.level == mutation.LevelFailure {
		style = s.ToastFailure
	}
	text := t.message
	if t.title != "" && t.message != "" {
		text = t.title + ": " + t.message
	} else if t.title != "" {
		text = t.title
	}
	if maxWidth > 4 && lipgloss.Width(text)+2 > maxWidth {
		return style.Width(maxWidth).Render(text)
	}
	return style.Render(text)
}

// Draw places the toast above the bottom rows of area, right-aligned.
func (t *Toast) Draw(scr uv.Screen, area uv.Rectangle) {
	content := t.View(area.Dx() - 2)
	if content == "" {
		return
	}
	w, h := lipgloss.Width(content), lipgloss.Height(content)
	x := max(area.Max.X-w-1, area.Min.X)
	y := max(area.Max.Y-StatusHeight-FooterHeight-h, area.Min.Y)
	uv.NewStyledString(content).Draw(scr, uv.Rect(x, y, w, h))
}

// IsVisible returns whether the toast is currently visible.
func (t *Toast) IsVisible() bool {
	return t.visible
}

// Message returns the current text, or "" if hidden.
func (t *Toast) Message() string {
	if !t.visible {
		return ""
	}
	return t.message
}

// Level returns the level of the visible notice.
func (t *Toast) Level() mutation.Level {
	return t.level
}
