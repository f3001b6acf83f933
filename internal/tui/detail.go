package tui

import (
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/editor"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/board"
	"github.com/mark3labs/taskdeck/internal/tui/theme"
)

// DeleteRequestMsg asks the app to confirm deleting a task.
type DeleteRequestMsg struct {
	Task api.Task
}

// TaskDetail is the modal showing one task with its rendered description.
type TaskDetail struct {
	task    api.Task
	cats    board.CategoryIndex
	visible bool
	vp      viewport.Model
	width   int
	height  int
}

// NewTaskDetail creates a hidden detail modal.
func NewTaskDetail() *TaskDetail {
	return &TaskDetail{vp: viewport.New(viewport.WithWidth(60), viewport.WithHeight(12))}
}

// Show opens the modal for t.
func (d *TaskDetail) Show(t api.Task, cats board.CategoryIndex) {
	d.task = t
	d.cats = cats
	d.visible = true
	d.render()
	d.vp.GotoTop()
}

// Refresh swaps in a newer copy of the shown task, if still present.
func (d *TaskDetail) Refresh(tasks []api.Task, cats board.CategoryIndex) {
	if !d.visible {
		return
	}
	t, ok := board.Find(tasks, d.task.ID)
	if !ok {
		d.Close()
		return
	}
	d.task = t
	d.cats = cats
	d.render()
}

// Close hides the modal.
func (d *TaskDetail) Close() {
	d.visible = false
}

// IsVisible returns whether the modal is visible.
func (d *TaskDetail) IsVisible() bool {
	return d.visible
}

// Task returns the shown task.
func (d *TaskDetail) Task() api.Task {
	return d.task
}

// SetSize sizes the modal to fit in a w×h screen.
func (d *TaskDetail) SetSize(w, h int) {
	d.width = min(max(w-8, 30), 90)
	d.height = max(h-8, 8)
	d.vp.SetWidth(d.width - 6)
	d.vp.SetHeight(d.height - 8)
	if d.visible {
		d.render()
	}
}

func (d *TaskDetail) render() {
	desc := ""
	if d.task.Description != nil {
		desc = *d.task.Description
	}
	body := renderMarkdown(desc, max(d.vp.Width(), 20))
	if body == "" {
		body = theme.Current().S().Muted.Render("No description. Press e to write one.")
	}
	d.vp.SetContent(body)
}

// Update handles modal input.
func (d *TaskDetail) Update(msg tea.Msg) tea.Cmd {
	if !d.visible {
		return nil
	}
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "esc", "q":
			d.Close()
			return nil
		case "e":
			return editDescription(d.task)
		case "d":
			t := d.task
			return func() tea.Msg { return DeleteRequestMsg{Task: t} }
		}
	}
	var cmd tea.Cmd
	d.vp, cmd = d.vp.Update(msg)
	return cmd
}

// editDescription opens $EDITOR on the task's description.
func editDescription(t api.Task) tea.Cmd {
	tmp, err := os.CreateTemp("", fmt.Sprintf("taskdeck_%d_*.md", t.ID))
	if err != nil {
		return func() tea.Msg { return DescriptionEditedMsg{TaskID: t.ID, Err: err} }
	}
	if t.Description != nil {
		if _, err := tmp.WriteString(*t.Description); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			return func() tea.Msg { return DescriptionEditedMsg{TaskID: t.ID, Err: err} }
		}
	}
	_ = tmp.Close()

	cmd, err := editor.Command("taskdeck", tmp.Name())
	if err != nil {
		_ = os.Remove(tmp.Name())
		return func() tea.Msg { return DescriptionEditedMsg{TaskID: t.ID, Err: err} }
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer os.Remove(tmp.Name())
		if err != nil {
			return DescriptionEditedMsg{TaskID: t.ID, Err: err}
		}
		content, err := os.ReadFile(tmp.Name())
		if err != nil {
			return DescriptionEditedMsg{TaskID: t.ID, Err: err}
		}
		return DescriptionEditedMsg{TaskID: t.ID, Text: strings.TrimRight(string(content), "\n")}
	})
}

// Draw renders the modal centered in area.
func (d *TaskDetail) Draw(scr uv.Screen, area uv.Rectangle) {
	if !d.visible {
		return
	}
	s := theme.Current().S()
	t := d.task

	meta := []string{
		s.Subtle.Render("Status: ") + t.Status.Label(),
		s.Subtle.Render("Category: ") + d.cats.Name(t.CategoryID),
		s.Subtle.Render("Priority: ") + board.ParsePriority(t.Priority).String(),
	}
	if t.Deadline != nil {
		meta = append(meta, s.Subtle.Render("Due: ")+t.Deadline.Format("Mon Jan 2 2006"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.ModalTitle.Render(fmt.Sprintf("#%d %s", t.ID, truncate(t.Title, d.width-12))),
		strings.Join(meta, s.Muted.Render("  ·  ")),
		"",
		d.vp.View(),
		"",
		HintDetail(),
	)
	box := s.ModalBorder.Width(d.width).Render(content)
	rect := centered(area, lipgloss.Width(box), lipgloss.Height(box))
	FillArea(scr, rect, lipgloss.NewStyle().Background(theme.HexToColor(theme.Current().BgBase)))
	uv.NewStyledString(box).Draw(scr, rect)
}
