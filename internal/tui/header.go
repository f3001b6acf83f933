package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/board"
	"github.com/mark3labs/taskdeck/internal/tui/theme"
)

// Header renders the title row and the category filter bar.
type Header struct {
	user *api.User
	host string
}

// NewHeader creates a header for an API host.
func NewHeader(host string) *Header {
	return &Header{host: host}
}

// SetUser sets the signed-in user shown on the right.
func (h *Header) SetUser(u *api.User) {
	h.user = u
}

// Draw renders "taskdeck · host" on the left and the user on the right.
func (h *Header) Draw(scr uv.Screen, area uv.Rectangle) {
	if area.Dy() < 1 {
		return
	}
	s := theme.Current().S()
	left := s.HeaderTitle.Render("taskdeck")
	if h.host != "" {
		left += s.Muted.Render(" · " + h.host)
	}
	right := ""
	if h.user != nil {
		right = s.HeaderUser.Render(h.user.DisplayName())
	}
	DrawText(scr, area, spread(left, right, area.Dx()))
}

// DrawFilter renders the category chips with the active one highlighted.
func (h *Header) DrawFilter(scr uv.Screen, area uv.Rectangle, cats board.CategoryIndex, active *int64) {
	if area.Dy() < 1 {
		return
	}
	th := theme.Current()
	s := th.S()

	chip := func(label string, selected bool, fg string) string {
		if selected {
			return s.ButtonFocused.Padding(0, 1).Render(label)
		}
		return lipgloss.NewStyle().Foreground(theme.HexToColor(fg)).Padding(0, 1).Render(label)
	}

	parts := []string{s.Muted.Render("Filter:"), chip("All", active == nil, th.FgSubtle)}
	for _, c := range cats.All() {
		selected := active != nil && *active == c.ID
		parts = append(parts, chip(c.Name, selected, th.CategoryColor(board.ParseColor(c.Color))))
	}
	DrawText(scr, area, truncateStyled(strings.Join(parts, " "), area.Dx()))
}

// spread places left and right at either edge of width.
func spread(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return truncateStyled(left+" "+right, width)
	}
	return left + strings.Repeat(" ", gap) + right
}
