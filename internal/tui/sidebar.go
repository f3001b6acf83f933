package tui

import (
	"fmt"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/taskdeck/internal/journal"
	"github.com/mark3labs/taskdeck/internal/tui/theme"
)

// Sidebar lists recent journaled mutations.
type Sidebar struct {
	recent  []*journal.Mutation
	err     string
	enabled bool
}

// NewSidebar creates a sidebar. A disabled sidebar explains that the
// journal is off instead of listing activity.
func NewSidebar(enabled bool) *Sidebar {
	return &Sidebar{enabled: enabled}
}

// SetHistory replaces the listed activity.
func (s *Sidebar) SetHistory(recent []*journal.Mutation, err error) {
	s.recent = recent
	s.err = ""
	if err != nil {
		s.err = err.Error()
	}
}

// Draw renders the activity panel.
func (s *Sidebar) Draw(scr uv.Screen, area uv.Rectangle) {
	if area.Dx() <= 0 || area.Dy() <= 0 {
		return
	}
	st := theme.Current().S()
	inner := DrawPanel(scr, area, "Activity", false)
	line := func(y int, text string) {
		DrawText(scr, uv.Rect(inner.Min.X+1, y, inner.Dx()-1, 1), truncateStyled(text, inner.Dx()-1))
	}

	switch {
	case !s.enabled:
		line(inner.Min.Y, st.Muted.Render("Journal disabled"))
		return
	case s.err != "":
		line(inner.Min.Y, st.Error.Render(s.err))
		return
	case len(s.recent) == 0:
		line(inner.Min.Y, st.Muted.Render("No activity yet"))
		return
	}

	y := inner.Min.Y
	for _, m := range s.recent {
		if y >= inner.Max.Y {
			break
		}
		line(y, s.render(m))
		y++
	}
}

func (s *Sidebar) render(m *journal.Mutation) string {
	st := theme.Current().S()
	mark := st.Muted.Render("…")
	switch m.Outcome {
	case journal.ActionSucceeded:
		mark = lipgloss.NewStyle().Foreground(theme.HexToColor(theme.Current().Success)).Render("✓")
	case journal.ActionFailed:
		mark = st.Error.Render("✗")
	case journal.ActionSuperseded:
		mark = st.Muted.Render("↷")
	}
	target := ""
	if m.TaskID != 0 {
		target = fmt.Sprintf(" #%d", m.TaskID)
	}
	when := st.Muted.Render(m.IssuedAt.Format("15:04"))
	return fmt.Sprintf("%s %s %s%s", when, mark, m.Kind, target)
}
