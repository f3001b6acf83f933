package tui

import (
	"strings"

	bkey "charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/board"
	"github.com/mark3labs/taskdeck/internal/tui/theme"
)

// Focus zones of the new-task modal.
const (
	focusTitle = iota
	focusDescription
	focusPriority
	focusZones
)

var priorities = []board.Priority{board.PriorityLow, board.PriorityMedium, board.PriorityHigh}

// TaskInputModal creates a task in the focused lane under the active
// category filter.
type TaskInputModal struct {
	visible  bool
	title    textinput.Model
	desc     textarea.Model
	priority int
	focus    int
	status   api.Status
	category *int64
	catName  string
	err      string
	width    int
}

// NewTaskInputModal creates a hidden modal.
func NewTaskInputModal() *TaskInputModal {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.Prompt = ""
	ti.CharLimit = 200
	ti.SetWidth(50)

	ta := textarea.New()
	ta.Placeholder = "Description (markdown)"
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 2000
	ta.SetWidth(50)
	ta.SetHeight(5)
	// ctrl+t would otherwise move the cursor down.
	ta.KeyMap.LineNext = bkey.NewBinding(bkey.WithKeys("down"))

	styles := textarea.DefaultDarkStyles()
	styles.Cursor.Color = theme.HexToColor(theme.Current().Secondary)
	ta.SetStyles(styles)

	return &TaskInputModal{
		title:    ti,
		desc:     ta,
		priority: 1,
		width:    60,
	}
}

// IsVisible returns whether the modal is visible.
func (m *TaskInputModal) IsVisible() bool {
	return m.visible
}

// Show opens the modal for a new task in status under category.
func (m *TaskInputModal) Show(status api.Status, category *int64, catName string) tea.Cmd {
	m.visible = true
	m.status = status
	m.category = category
	m.catName = catName
	m.focus = focusTitle
	m.desc.Blur()
	return m.title.Focus()
}

// Close hides and resets the modal.
func (m *TaskInputModal) Close() {
	m.visible = false
	m.title.Reset()
	m.desc.Reset()
	m.title.Blur()
	m.desc.Blur()
	m.priority = 1
	m.err = ""
}

func (m *TaskInputModal) setFocus(f int) tea.Cmd {
	m.focus = f
	m.title.Blur()
	m.desc.Blur()
	switch f {
	case focusTitle:
		return m.title.Focus()
	case focusDescription:
		return m.desc.Focus()
	}
	return nil
}

// Update handles modal input.
func (m *TaskInputModal) Update(msg tea.Msg) tea.Cmd {
	if !m.visible {
		return nil
	}
	if k, ok := msg.(tea.KeyPressMsg); ok {
		switch k.String() {
		case "esc":
			m.Close()
			return nil
		case "tab":
			return m.setFocus((m.focus + 1) % focusZones)
		case "shift+tab":
			return m.setFocus((m.focus + focusZones - 1) % focusZones)
		case "ctrl+s":
			return m.submit()
		case "enter":
			if m.focus != focusDescription {
				return m.submit()
			}
		case "left", "h":
			if m.focus == focusPriority {
				m.priority = max(m.priority-1, 0)
				return nil
			}
		case "right", "l":
			if m.focus == focusPriority {
				m.priority = min(m.priority+1, len(priorities)-1)
				return nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusTitle:
		m.title, cmd = m.title.Update(msg)
	case focusDescription:
		m.desc, cmd = m.desc.Update(msg)
	}
	return cmd
}

func (m *TaskInputModal) submit() tea.Cmd {
	title := strings.TrimSpace(m.title.Value())
	if title == "" {
		m.err = "Title is required"
		return m.setFocus(focusTitle)
	}
	in := api.NewTask{
		Title:      title,
		Status:     m.status,
		CategoryID: m.category,
		Priority:   priorities[m.priority].String(),
	}
	if d := strings.TrimSpace(m.desc.Value()); d != "" {
		in.Description = &d
	}
	m.Close()
	return func() tea.Msg { return CreateTaskMsg{Task: in} }
}

// Draw renders the modal centered in area.
func (m *TaskInputModal) Draw(scr uv.Screen, area uv.Rectangle) {
	if !m.visible {
		return
	}
	s := theme.Current().S()

	label := func(f int, text string) string {
		if m.focus == f {
			return s.PanelTitleFocused.Render(text)
		}
		return s.Subtle.Render(text)
	}

	var prio []string
	for i, p := range priorities {
		style := s.Button
		if i == m.priority {
			style = s.ButtonFocused
		}
		prio = append(prio, style.Render(p.String()))
	}

	where := m.status.Label()
	if m.catName != "" {
		where += " · " + m.catName
	}

	rows := []string{
		s.ModalTitle.Render("New task") + "  " + s.Muted.Render(where),
		"",
		label(focusTitle, "Title"),
		m.title.View(),
		"",
		label(focusDescription, "Description"),
		m.desc.View(),
		"",
		label(focusPriority, "Priority"),
		lipgloss.JoinHorizontal(lipgloss.Top, prio[0], " ", prio[1], " ", prio[2]),
		"",
	}
	if m.err != "" {
		rows = append(rows, s.Error.Render(m.err))
	}
	rows = append(rows, RenderHintBar(KeyTab, "next", KeyEnter, "create", "ctrl+s", "create", KeyEsc, "cancel"))

	box := s.ModalBorder.Width(m.width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	rect := centered(area, lipgloss.Width(box), lipgloss.Height(box))
	FillArea(scr, rect, lipgloss.NewStyle().Background(theme.HexToColor(theme.Current().BgBase)))
	uv.NewStyledString(box).Draw(scr, rect)
}
