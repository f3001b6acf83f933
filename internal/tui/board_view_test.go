package tui

import (
	"strings"
	"testing"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/dragdrop"
	"github.com/mark3labs/taskdeck/internal/tui/testfixtures"
)

func newTestBoard() *BoardView {
	b := NewBoardView()
	b.now = func() time.Time { return testfixtures.FixedTime }
	b.SetData(testfixtures.Tasks(), testfixtures.Categories())
	return b
}

func TestBoardView_Partition(t *testing.T) {
	b := newTestBoard()

	lanes := b.Lanes()
	if len(lanes.Pending) != 2 || len(lanes.InProgress) != 1 || len(lanes.Review) != 1 || len(lanes.Completed) != 1 {
		t.Errorf("lanes = %d/%d/%d/%d", len(lanes.Pending), len(lanes.InProgress), len(lanes.Review), len(lanes.Completed))
	}
	if len(b.Late()) != 1 || b.Late()[0].ID != 6 {
		t.Errorf("late = %+v", b.Late())
	}
	if b.LateRows() != 2 {
		t.Errorf("LateRows = %d, want 2", b.LateRows())
	}
}

func TestBoardView_FilterKeepsSelectionInRange(t *testing.T) {
	b := newTestBoard()
	b.MoveRow(1)
	if sel, _ := b.Selected(); sel.ID != 2 {
		t.Fatalf("selected = %d, want 2", sel.ID)
	}

	work := testfixtures.WorkCategory
	b.SetFilter(&work)
	sel, ok := b.Selected()
	if !ok || sel.ID != 1 {
		t.Errorf("selected = %d, want 1 after filtering", sel.ID)
	}
	if len(b.Late()) != 1 {
		t.Error("blocked work task should stay in the late strip")
	}

	home := testfixtures.HomeCategory
	b.SetFilter(&home)
	if len(b.Late()) != 0 || len(b.Lanes().Review) != 0 {
		t.Error("home filter should hide work tasks")
	}
}

func TestBoardView_Navigation(t *testing.T) {
	b := newTestBoard()

	b.MoveLane(-1)
	if b.Lane() != 0 {
		t.Error("lane should clamp at 0")
	}
	b.MoveLane(10)
	if b.LaneStatus() != api.StatusCompleted {
		t.Errorf("lane = %s, want completed", b.LaneStatus())
	}
	b.MoveRow(5)
	if sel, _ := b.Selected(); sel.ID != 5 {
		t.Errorf("selected = %d, want 5", sel.ID)
	}
	if !b.Select(4) || b.LaneStatus() != api.StatusReview {
		t.Error("Select should focus the card's lane")
	}
	if b.Select(6) {
		t.Error("an unlaned task cannot be selected")
	}
}

func TestBoardView_DrawAndHitTest(t *testing.T) {
	b := newTestBoard()
	m := dragdrop.New()
	if err := m.Start("1"); err != nil {
		t.Fatal(err)
	}
	m.Enter(api.StatusReview)

	var board uv.Rectangle
	out := testfixtures.Render(func(scr uv.Screen, area uv.Rectangle) {
		board = uv.Rect(0, 0, 140, 30)
		b.Draw(scr, board, uv.Rect(0, 30, 140, 3), true, m)
	})

	for _, want := range []string{"Pending (2)", "Review (1)", "Write report", "Work", "overdue", "Other (1)", "#6 Blocked on vendor", "[blocked]"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q\n%s", want, out)
		}
	}

	lane, ok := b.LaneAt(80, 10)
	if !ok || lane != api.StatusReview {
		t.Errorf("LaneAt = %q, %v", lane, ok)
	}
	if _, ok := b.LaneAt(10, 35); ok {
		t.Error("below the lanes is no lane")
	}

	task, ok := b.CardAt(2, 2)
	if !ok || task.ID != 1 {
		t.Errorf("CardAt = %+v, %v", task, ok)
	}
	if _, ok := b.CardAt(2, 25); ok {
		t.Error("empty lane space is no card")
	}
}

func TestBoardView_EmptyLane(t *testing.T) {
	b := NewBoardView()
	b.SetData(nil, nil)
	out := testfixtures.Render(func(scr uv.Screen, area uv.Rectangle) {
		b.Draw(scr, uv.Rect(0, 0, 100, 20), uv.Rectangle{}, false, nil)
	})
	if strings.Count(out, "No tasks") != 4 {
		t.Errorf("expected four empty lanes\n%s", out)
	}
	if _, ok := b.Selected(); ok {
		t.Error("nothing to select")
	}
}
