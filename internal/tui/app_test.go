package tui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/dragdrop"
	"github.com/mark3labs/taskdeck/internal/mutation"
	"github.com/mark3labs/taskdeck/internal/state"
	"github.com/mark3labs/taskdeck/internal/tui/testfixtures"
)

func TestApp_RendersBoardForExistingSession(t *testing.T) {
	ta := newTestApp(t, true)

	if ta.screen != screenBoard {
		t.Fatalf("screen = %v, want board", ta.screen)
	}
	out := ta.render()
	for _, want := range []string{
		"Pending (2)",
		"In Progress (1)",
		"Review (1)",
		"Completed (1)",
		"Other (1)",
		"Write report",
		"Alice",
		"Filter:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("board missing %q\n%s", want, out)
		}
	}
}

func TestApp_ShowsLoginWithoutSession(t *testing.T) {
	ta := newTestApp(t, false)

	if ta.screen != screenAuth {
		t.Fatalf("screen = %v, want auth", ta.screen)
	}
	if out := ta.render(); !strings.Contains(out, "Sign in") {
		t.Errorf("expected login form\n%s", out)
	}
}

func TestApp_LoginFlow(t *testing.T) {
	ta := newTestApp(t, false)

	ta.auth.inputs[fieldUsername].SetValue(testfixtures.FixedUsername)
	ta.auth.inputs[fieldPassword].SetValue("wrong")
	send(t, ta.App, key("enter"))

	if ta.screen != screenAuth {
		t.Fatal("bad password should stay on the form")
	}
	if got := ta.auth.Error(); got != "Invalid username or password" {
		t.Errorf("error = %q", got)
	}

	ta.auth.inputs[fieldPassword].SetValue(testfixtures.FixedPassword)
	send(t, ta.App, key("enter"))

	if ta.screen != screenBoard {
		t.Fatalf("screen = %v, want board", ta.screen)
	}
	if _, ok := ta.board.Selected(); !ok {
		t.Error("board should be loaded after login")
	}
}

func TestApp_Logout(t *testing.T) {
	ta := newTestApp(t, true)

	send(t, ta.App, key("L"))

	if ta.screen != screenAuth {
		t.Fatalf("screen = %v, want auth", ta.screen)
	}
	if ta.remote.LoggedIn() {
		t.Error("server session should be gone")
	}
	if tasks, ok := ta.cache.Tasks.Snapshot(); ok || len(tasks) != 0 {
		t.Error("task cache should be cleared on logout")
	}
}

func TestApp_KeyboardDragMovesTask(t *testing.T) {
	ta := newTestApp(t, true)

	sel, ok := ta.board.Selected()
	if !ok || sel.ID != 1 {
		t.Fatalf("selected = %+v, want task 1", sel)
	}

	send(t, ta.App, key("space"))
	if ta.drag.State() != dragdrop.OverLane {
		t.Fatalf("drag state = %v, want over-lane", ta.drag.State())
	}
	send(t, ta.App, key("l"))
	send(t, ta.App, key("l"))
	if cur, _ := ta.drag.Current(); cur != api.StatusReview {
		t.Fatalf("target = %q, want review", cur)
	}
	if out := ta.render(); !strings.Contains(out, "Moving Write report") {
		t.Errorf("status bar should show the held card\n%s", out)
	}

	send(t, ta.App, key("enter"))

	if ta.drag.State() != dragdrop.Idle {
		t.Errorf("drag state = %v, want idle", ta.drag.State())
	}
	if ta.remote.UpdateCalls != 1 || ta.remote.LastPatchID != 1 {
		t.Fatalf("patches = %d (last id %d), want one for task 1", ta.remote.UpdateCalls, ta.remote.LastPatchID)
	}
	if p := ta.remote.LastPatch; p.Status == nil || *p.Status != api.StatusReview || p.Title != nil {
		t.Errorf("patch = %+v, want status only", p)
	}

	n := ta.nextNotice(t)
	if n.Level != mutation.LevelSuccess || n.TaskID != 1 {
		t.Errorf("notice = %+v", n)
	}
	send(t, ta.App, NoticeMsg{Notice: n})
	if !ta.toast.IsVisible() {
		t.Error("success notice should show a toast")
	}

	send(t, ta.App, CacheChangedMsg{})
	if got := len(ta.board.Lanes().Review); got != 2 {
		t.Errorf("review lane has %d tasks, want 2", got)
	}
	if sel, _ := ta.board.Selected(); sel.ID != 1 || ta.board.LaneStatus() != api.StatusReview {
		t.Errorf("selection should follow the moved card, got %d in %s", sel.ID, ta.board.LaneStatus())
	}
}

func TestApp_EscCancelsDrag(t *testing.T) {
	ta := newTestApp(t, true)

	send(t, ta.App, key("space"))
	send(t, ta.App, key("l"))
	send(t, ta.App, key("esc"))

	if ta.drag.State() != dragdrop.Idle {
		t.Errorf("drag state = %v, want idle", ta.drag.State())
	}
	if ta.remote.UpdateCalls != 0 {
		t.Errorf("cancelled drag sent %d patches", ta.remote.UpdateCalls)
	}
}

func TestApp_FailedMoveShowsFailureToast(t *testing.T) {
	ta := newTestApp(t, true)
	ta.remote.UpdateError = &api.StatusError{Code: 500, Message: "Internal server error"}

	send(t, ta.App, key("space"))
	send(t, ta.App, key("l"))
	send(t, ta.App, key("enter"))

	n := ta.nextNotice(t)
	if n.Level != mutation.LevelFailure {
		t.Fatalf("notice = %+v, want failure", n)
	}
	send(t, ta.App, NoticeMsg{Notice: n})
	if ta.toast.Level() != mutation.LevelFailure {
		t.Error("toast should show the failure")
	}

	send(t, ta.App, CacheChangedMsg{})
	if got, _ := ta.remote.Task(1); got.Status != api.StatusPending {
		t.Errorf("server status = %q", got.Status)
	}
	if got := len(ta.board.Lanes().Pending); got != 2 {
		t.Errorf("pending lane has %d tasks, want 2", got)
	}
}

func TestApp_MouseDragMovesTask(t *testing.T) {
	ta := newTestApp(t, true)
	ta.render()

	var card, target tea.Mouse
	for _, c := range ta.board.cards {
		if c.id == 2 {
			card = tea.Mouse{X: c.rect.Min.X + 2, Y: c.rect.Min.Y + 1, Button: tea.MouseLeft}
		}
	}
	r := ta.board.laneRects[3]
	target = tea.Mouse{X: r.Min.X + 2, Y: r.Max.Y - 1, Button: tea.MouseLeft}

	send(t, ta.App, tea.MouseClickMsg(card))
	if sel, _ := ta.board.Selected(); sel.ID != 2 {
		t.Fatalf("click should select task 2, got %d", sel.ID)
	}
	send(t, ta.App, tea.MouseMotionMsg(target))
	if cur, ok := ta.drag.Current(); !ok || cur != api.StatusCompleted {
		t.Fatalf("target = %q, want completed", cur)
	}
	send(t, ta.App, tea.MouseReleaseMsg(target))

	if ta.remote.LastPatchID != 2 || *ta.remote.LastPatch.Status != api.StatusCompleted {
		t.Errorf("patch = %d %+v", ta.remote.LastPatchID, ta.remote.LastPatch)
	}
}

func TestApp_ClickWithoutMotionOnlySelects(t *testing.T) {
	ta := newTestApp(t, true)
	ta.render()

	var m tea.Mouse
	for _, c := range ta.board.cards {
		if c.id == 3 {
			m = tea.Mouse{X: c.rect.Min.X + 2, Y: c.rect.Min.Y + 1, Button: tea.MouseLeft}
		}
	}
	send(t, ta.App, tea.MouseClickMsg(m))
	send(t, ta.App, tea.MouseReleaseMsg(m))

	if ta.remote.UpdateCalls != 0 {
		t.Error("a click must not move the card")
	}
	if sel, _ := ta.board.Selected(); sel.ID != 3 {
		t.Errorf("selected = %d, want 3", sel.ID)
	}
}

func TestApp_FilterCyclesAndPersists(t *testing.T) {
	ta := newTestApp(t, true)

	send(t, ta.App, key("f"))
	if f := ta.board.Filter(); f == nil || *f != testfixtures.WorkCategory {
		t.Fatalf("filter = %v, want work", f)
	}
	if got := len(ta.board.Lanes().Pending); got != 1 {
		t.Errorf("pending under work = %d, want 1", got)
	}
	saved := state.Load(ta.dataDir)
	if saved.Board.Category == nil || *saved.Board.Category != testfixtures.WorkCategory {
		t.Errorf("saved filter = %v", saved.Board.Category)
	}

	send(t, ta.App, key("f"))
	send(t, ta.App, key("f"))
	if ta.board.Filter() != nil {
		t.Error("filter should wrap back to all")
	}
}

func TestApp_CreateTaskInFocusedLane(t *testing.T) {
	ta := newTestApp(t, true)

	send(t, ta.App, key("l"))
	send(t, ta.App, key("n"))
	if !ta.input.IsVisible() {
		t.Fatal("new task modal should open")
	}
	ta.input.title.SetValue("Plan sprint")
	send(t, ta.App, key("enter"))

	if ta.input.IsVisible() {
		t.Error("modal should close on submit")
	}
	if len(ta.remote.Created) != 1 {
		t.Fatalf("created %d tasks", len(ta.remote.Created))
	}
	in := ta.remote.Created[0]
	if in.Title != "Plan sprint" || in.Status != api.StatusInProgress || in.CategoryID != nil || in.Priority != "medium" {
		t.Errorf("created = %+v", in)
	}
}

func TestApp_DeleteAsksForConfirmation(t *testing.T) {
	ta := newTestApp(t, true)

	send(t, ta.App, key("d"))
	if !ta.dialog.IsVisible() {
		t.Fatal("delete should ask first")
	}
	send(t, ta.App, key("n"))
	if len(ta.remote.Deleted) != 0 {
		t.Fatal("declined delete was sent")
	}

	send(t, ta.App, key("d"))
	send(t, ta.App, key("y"))
	if len(ta.remote.Deleted) != 1 || ta.remote.Deleted[0] != 1 {
		t.Errorf("deleted = %v, want [1]", ta.remote.Deleted)
	}
}

func TestApp_DetailShowsDescription(t *testing.T) {
	ta := newTestApp(t, true)

	send(t, ta.App, key("l"))
	send(t, ta.App, key("enter"))
	if !ta.detail.IsVisible() || ta.detail.Task().ID != 3 {
		t.Fatal("detail should open on the selected card")
	}
	out := ta.render()
	if !strings.Contains(out, "Fix login bug") || !strings.Contains(out, "expired") {
		t.Errorf("detail missing content\n%s", out)
	}

	send(t, ta.App, DescriptionEditedMsg{TaskID: 3, Text: "Fixed in #12"})
	got, _ := ta.remote.Task(3)
	if got.Description == nil || *got.Description != "Fixed in #12" {
		t.Errorf("description = %v", got.Description)
	}

	send(t, ta.App, key("esc"))
	if ta.detail.IsVisible() {
		t.Error("esc should close the detail")
	}
}

func TestApp_SidebarToggle(t *testing.T) {
	ta := newTestApp(t, true)

	if !ta.sidebarVisible {
		t.Fatal("sidebar visible by default")
	}
	if out := ta.render(); !strings.Contains(out, "Journal disabled") {
		t.Errorf("sidebar should say the journal is off\n%s", out)
	}
	send(t, ta.App, key("tab"))
	if ta.sidebarVisible {
		t.Error("tab should hide the sidebar")
	}
	if state.Load(ta.dataDir).Sidebar.Visible {
		t.Error("sidebar state should persist")
	}
}
