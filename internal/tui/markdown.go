package tui

import (
	"strings"

	"charm.land/glamour/v2"
	"charm.land/lipgloss/v2"
)

// renderMarkdown renders a task description with glamour, falling back to
// plain wrapping if rendering fails.
func renderMarkdown(content string, width int) string {
	width = min(width, 120)
	if strings.TrimSpace(content) == "" {
		return ""
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wrapText(content, width)
	}
	rendered, err := r.Render(content)
	if err != nil {
		return wrapText(content, width)
	}
	return strings.Trim(rendered, "\n")
}

func wrapText(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(content)
}
