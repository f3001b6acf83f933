package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/taskdeck/internal/tui/theme"
)

// DrawText renders plain text at a position
func DrawText(scr uv.Screen, area uv.Rectangle, text string) {
	uv.NewStyledString(text).Draw(scr, area)
}

// DrawStyled renders lipgloss-styled content filling area
func DrawStyled(scr uv.Screen, area uv.Rectangle, style lipgloss.Style, text string) {
	content := style.Width(area.Dx()).Height(area.Dy()).Render(text)
	uv.NewStyledString(content).Draw(scr, area)
}

// FillArea clears an area with a styled background
func FillArea(scr uv.Screen, area uv.Rectangle, style lipgloss.Style) {
	fill := style.Width(area.Dx()).Height(area.Dy()).Render("")
	uv.NewStyledString(fill).Draw(scr, area)
}

// DrawPanel renders "Title ────────" on the first row of area and returns
// the area below it. Focus is indicated by the header color.
func DrawPanel(scr uv.Screen, area uv.Rectangle, title string, focused bool) uv.Rectangle {
	if area.Dy() <= 0 {
		return area
	}
	s := theme.Current().S()
	titleStyle, ruleStyle := s.PanelTitle, s.PanelRule
	if focused {
		titleStyle, ruleStyle = s.PanelTitleFocused, s.PanelRuleFocused
	}

	styledTitle := titleStyle.Render(title)
	ruleWidth := max(area.Dx()-lipgloss.Width(styledTitle)-1, 0)
	header := styledTitle + " " + ruleStyle.Render(strings.Repeat("─", ruleWidth))

	titleArea := uv.Rect(area.Min.X, area.Min.Y, area.Dx(), 1)
	uv.NewStyledString(header).Draw(scr, titleArea)

	inner := area
	inner.Min.Y++
	return inner
}

// centered returns a w×h rectangle centered in area, clipped to it.
func centered(area uv.Rectangle, w, h int) uv.Rectangle {
	w = min(w, area.Dx())
	h = min(h, area.Dy())
	x := area.Min.X + (area.Dx()-w)/2
	y := area.Min.Y + (area.Dy()-h)/2
	return uv.Rect(x, y, w, h)
}

// truncate shortens s to width cells, appending an ellipsis when cut.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
