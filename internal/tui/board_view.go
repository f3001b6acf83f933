package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/board"
	"github.com/mark3labs/taskdeck/internal/dragdrop"
	"github.com/mark3labs/taskdeck/internal/tui/theme"
)

// cardHit is a drawn card's screen position.
type cardHit struct {
	rect uv.Rectangle
	id   int64
}

// BoardView renders the four status lanes and tracks the keyboard
// selection. It holds a filtered copy of the cached tasks and never
// mutates them.
type BoardView struct {
	tasks  []api.Task
	cats   board.CategoryIndex
	filter *int64
	lanes  board.Lanes
	late   []api.Task

	lane   int
	row    [4]int
	offset [4]int

	laneRects [4]uv.Rectangle
	cards     []cardHit
	now       func() time.Time
}

// NewBoardView creates an empty board.
func NewBoardView() *BoardView {
	return &BoardView{now: time.Now}
}

// SetData replaces the tasks and categories and re-partitions.
func (b *BoardView) SetData(tasks []api.Task, cats []api.Category) {
	b.tasks = tasks
	b.cats = board.NewCategoryIndex(cats)
	b.repartition()
}

// SetFilter changes the category filter. nil shows every category.
func (b *BoardView) SetFilter(category *int64) {
	b.filter = category
	b.repartition()
}

// Filter returns the active category filter.
func (b *BoardView) Filter() *int64 {
	return b.filter
}

// Categories returns the category index.
func (b *BoardView) Categories() board.CategoryIndex {
	return b.cats
}

func (b *BoardView) repartition() {
	visible := board.Filter(b.tasks, b.filter)
	b.lanes = board.Partition(visible)
	b.late = board.Unlaned(visible)
	for i, s := range api.Statuses {
		n := len(b.lanes.Lane(s))
		b.row[i] = clamp(b.row[i], 0, n-1)
	}
}

// Lanes returns the current partition.
func (b *BoardView) Lanes() board.Lanes {
	return b.lanes
}

// Late returns visible tasks whose status has no lane.
func (b *BoardView) Late() []api.Task {
	return b.late
}

// Lane returns the focused lane index.
func (b *BoardView) Lane() int {
	return b.lane
}

// LaneStatus returns the focused lane's status.
func (b *BoardView) LaneStatus() api.Status {
	return api.Statuses[b.lane]
}

// SetLane focuses lane i.
func (b *BoardView) SetLane(i int) {
	b.lane = clamp(i, 0, len(api.Statuses)-1)
}

// Selected returns the highlighted card.
func (b *BoardView) Selected() (api.Task, bool) {
	tasks := b.lanes.Lane(b.LaneStatus())
	if len(tasks) == 0 {
		return api.Task{}, false
	}
	return tasks[clamp(b.row[b.lane], 0, len(tasks)-1)], true
}

// MoveLane shifts focus by dx lanes.
func (b *BoardView) MoveLane(dx int) {
	b.SetLane(b.lane + dx)
}

// MoveRow shifts the selection within the focused lane.
func (b *BoardView) MoveRow(dy int) {
	n := len(b.lanes.Lane(b.LaneStatus()))
	b.row[b.lane] = clamp(b.row[b.lane]+dy, 0, n-1)
}

// Select focuses the card with the given id. Returns false if it is not
// on a visible lane.
func (b *BoardView) Select(id int64) bool {
	for i, s := range api.Statuses {
		for j, t := range b.lanes.Lane(s) {
			if t.ID == id {
				b.lane = i
				b.row[i] = j
				return true
			}
		}
	}
	return false
}

// LaneAt returns the lane under a screen position.
func (b *BoardView) LaneAt(x, y int) (api.Status, bool) {
	p := uv.Pos(x, y)
	for i, r := range b.laneRects {
		if p.In(r) {
			return api.Statuses[i], true
		}
	}
	return "", false
}

// CardAt returns the task drawn under a screen position.
func (b *BoardView) CardAt(x, y int) (api.Task, bool) {
	p := uv.Pos(x, y)
	for _, c := range b.cards {
		if p.In(c.rect) {
			return board.Find(b.tasks, c.id)
		}
	}
	return api.Task{}, false
}

// Scroll moves lane's viewport by dy cards.
func (b *BoardView) Scroll(lane api.Status, dy int) {
	for i, s := range api.Statuses {
		if s == lane {
			n := len(b.lanes.Lane(s))
			b.offset[i] = clamp(b.offset[i]+dy, 0, n-1)
		}
	}
}

// Draw renders the lanes into area and the late strip into late. The
// machine supplies the drop highlight and the card being dragged.
func (b *BoardView) Draw(scr uv.Screen, area, late uv.Rectangle, focused bool, m *dragdrop.Machine) {
	b.cards = b.cards[:0]
	n := len(api.Statuses)
	if area.Dx() < n || area.Dy() < 2 {
		return
	}
	s := theme.Current().S()
	dragged := int64(-1)
	if m != nil && m.State().Active() {
		if id, err := dragdrop.ParsePayload(m.Payload()); err == nil {
			dragged = id
		}
	}

	width := area.Dx() / n
	for i, status := range api.Statuses {
		x := area.Min.X + i*width
		w := width - 1
		if i == n-1 {
			w = area.Max.X - x
		}
		rect := uv.Rect(x, area.Min.Y, w, area.Dy())
		b.laneRects[i] = rect

		if m != nil && m.IsTarget(status) {
			FillArea(scr, rect, s.LaneDropTarget)
		}

		tasks := b.lanes.Lane(status)
		title := fmt.Sprintf("%s (%d)", status.Label(), len(tasks))
		inner := DrawPanel(scr, rect, title, focused && i == b.lane)
		b.drawLane(scr, inner, i, tasks, dragged)
	}

	b.drawLate(scr, late)
}

func (b *BoardView) drawLane(scr uv.Screen, area uv.Rectangle, lane int, tasks []api.Task, dragged int64) {
	if len(tasks) == 0 {
		DrawText(scr, uv.Rect(area.Min.X+1, area.Min.Y, area.Dx()-1, 1), theme.Current().S().Muted.Render("No tasks"))
		return
	}

	// Keep the selected card in view.
	sel := b.row[lane]
	per := max(area.Dy()/cardHeight, 1)
	if sel < b.offset[lane] {
		b.offset[lane] = sel
	} else if sel >= b.offset[lane]+per {
		b.offset[lane] = sel - per + 1
	}
	b.offset[lane] = clamp(b.offset[lane], 0, len(tasks)-1)

	y := area.Min.Y
	drawn := 0
	for j := b.offset[lane]; j < len(tasks) && y+cardHeight <= area.Max.Y; j++ {
		t := tasks[j]
		selected := lane == b.lane && j == sel
		card := b.renderCard(t, area.Dx(), selected, t.ID == dragged)
		h := lipgloss.Height(card)
		r := uv.Rect(area.Min.X, y, area.Dx(), h)
		uv.NewStyledString(card).Draw(scr, r)
		b.cards = append(b.cards, cardHit{rect: r, id: t.ID})
		y += h
		drawn++
	}
	if hidden := len(tasks) - b.offset[lane] - drawn; hidden > 0 && y < area.Max.Y {
		more := theme.Current().S().Muted.Render(fmt.Sprintf("↓ %d more", hidden))
		DrawText(scr, uv.Rect(area.Min.X+1, y, area.Dx()-1, 1), more)
	}
}

// cardHeight is a two-line card plus its border.
const cardHeight = 4

func (b *BoardView) renderCard(t api.Task, width int, selected, dragging bool) string {
	s := theme.Current().S()
	style := s.Card
	switch {
	case dragging:
		style = s.CardDragging
	case selected:
		style = s.CardSelected
	}
	inner := max(width-4, 1)

	title := truncate(t.Title, inner)
	meta := b.cardMeta(t, inner)
	return style.Width(width).Render(title + "\n" + meta)
}

func (b *BoardView) cardMeta(t api.Task, width int) string {
	th := theme.Current()
	s := th.S()

	dot := lipgloss.NewStyle().Foreground(theme.HexToColor(th.CategoryColor(b.cats.Color(t.CategoryID)))).Render("●")
	parts := []string{dot + " " + truncate(b.cats.Name(t.CategoryID), max(width/2, 4))}

	prio := board.ParsePriority(t.Priority)
	if prio == board.PriorityHigh {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.HexToColor(th.Warning)).Render("!"+prio.String()))
	} else {
		parts = append(parts, s.Muted.Render(prio.String()))
	}

	if t.Deadline != nil {
		due := t.Deadline.Format("Jan 2")
		if board.IsOverdue(t, b.now()) {
			parts = append(parts, s.Overdue.Render("overdue "+due))
		} else {
			parts = append(parts, s.Subtle.Render(due))
		}
	}
	return truncateStyled(strings.Join(parts, " "), width)
}

func (b *BoardView) drawLate(scr uv.Screen, area uv.Rectangle) {
	if area.Dy() <= 0 || len(b.late) == 0 {
		return
	}
	s := theme.Current().S()
	inner := DrawPanel(scr, area, fmt.Sprintf("Other (%d)", len(b.late)), false)
	y := inner.Min.Y
	for _, t := range b.late {
		if y >= inner.Max.Y {
			break
		}
		line := fmt.Sprintf("#%d %s %s", t.ID, t.Title, s.Muted.Render("["+string(t.Status)+"]"))
		DrawText(scr, uv.Rect(inner.Min.X+1, y, inner.Dx()-1, 1), truncateStyled(line, inner.Dx()-1))
		y++
	}
}

// LateRows is how many rows the late strip needs.
func (b *BoardView) LateRows() int {
	if len(b.late) == 0 {
		return 0
	}
	return min(len(b.late), 3) + 1
}

// truncateStyled cuts styled text to width cells.
func truncateStyled(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
