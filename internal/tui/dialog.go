package tui

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/taskdeck/internal/tui/theme"
)

// Dialog is a yes/no confirmation overlay.
type Dialog struct {
	title     string
	message   string
	visible   bool
	confirmed bool // focus is on the confirm button
	onConfirm func() tea.Cmd
	area      uv.Rectangle
}

// NewDialog creates a hidden dialog.
func NewDialog() *Dialog {
	return &Dialog{}
}

// Show displays the dialog. onConfirm runs only if the user confirms.
func (d *Dialog) Show(title, message string, onConfirm func() tea.Cmd) {
	d.title = title
	d.message = message
	d.visible = true
	d.confirmed = false
	d.onConfirm = onConfirm
}

// Hide closes the dialog
func (d *Dialog) Hide() {
	d.visible = false
	d.onConfirm = nil
}

// IsVisible returns whether the dialog is visible
func (d *Dialog) IsVisible() bool {
	return d.visible
}

// Update handles dialog input. "y" confirms, "n"/esc cancel, tab and arrows
// move between buttons and enter activates the focused one.
func (d *Dialog) Update(msg tea.Msg) tea.Cmd {
	if !d.visible {
		return nil
	}
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "y":
		return d.confirm()
	case "n", "esc", "q":
		d.Hide()
	case "tab", "left", "right", "h", "l":
		d.confirmed = !d.confirmed
	case "enter":
		if d.confirmed {
			return d.confirm()
		}
		d.Hide()
	}
	return nil
}

func (d *Dialog) confirm() tea.Cmd {
	fn := d.onConfirm
	d.Hide()
	if fn != nil {
		return fn()
	}
	return nil
}

// Draw renders the dialog centered in area.
func (d *Dialog) Draw(scr uv.Screen, area uv.Rectangle) {
	if !d.visible {
		return
	}
	s := theme.Current().S()

	width := max(lipgloss.Width(d.message), lipgloss.Width(d.title), 24)
	cancel, ok := s.ButtonFocused, s.Button
	if d.confirmed {
		cancel, ok = s.Button, s.ButtonFocused
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, cancel.Render("No"), "  ", ok.Render("Yes"))

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.ModalTitle.Width(width).Align(lipgloss.Center).Render(d.title),
		"",
		lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(d.message),
		"",
		lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(buttons),
	)
	box := s.ModalBorder.Render(content)

	d.area = centered(area, lipgloss.Width(box), lipgloss.Height(box))
	uv.NewStyledString(box).Draw(scr, d.area)
}
