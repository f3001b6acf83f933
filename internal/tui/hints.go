package tui

import (
	"strings"

	"github.com/mark3labs/taskdeck/internal/tui/theme"
)

// Standard key representations for consistent hints across the app.
const (
	KeyArrows = "←↓↑→/hjkl"
	KeyEnter  = "enter"
	KeySpace  = "space"
	KeyEsc    = "esc"
	KeyTab    = "tab"
)

// RenderHint renders a single key-description pair.
func RenderHint(key, desc string) string {
	s := theme.Current().S()
	return s.HintKey.Render(key) + " " + s.HintDesc.Render(desc)
}

// RenderHintBar renders key-description pairs separated by " · ".
func RenderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}
	sep := " " + theme.Current().S().Muted.Render("·") + " "
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		parts = append(parts, RenderHint(pairs[i], pairs[i+1]))
	}
	return strings.Join(parts, sep)
}

// HintBoard is shown while browsing the board.
func HintBoard() string {
	return RenderHintBar(
		KeyArrows, "move",
		KeySpace, "pick up",
		KeyEnter, "open",
		"n", "new",
		"d", "delete",
		"f", "filter",
		"r", "refresh",
		KeyTab, "activity",
		"L", "logout",
		"q", "quit",
	)
}

// HintDragging is shown while a card is held.
func HintDragging() string {
	return RenderHintBar("h/l", "choose lane", KeyEnter, "drop", KeyEsc, "cancel")
}

// HintModal returns standard modal hints.
func HintModal() string {
	return RenderHintBar(KeyEnter, "submit", KeyEsc, "close")
}

// HintDetail is shown in the task detail modal.
func HintDetail() string {
	return RenderHintBar("↑↓", "scroll", "e", "edit", "d", "delete", KeyEsc, "close")
}

// HintAuth is shown on the login form.
func HintAuth() string {
	return RenderHintBar(KeyTab, "next field", KeyEnter, "submit", "ctrl+r", "login/register", "ctrl+c", "quit")
}
