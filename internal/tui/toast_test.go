package tui

import (
	"testing"
	"time"

	"github.com/mark3labs/taskdeck/internal/mutation"
)

func TestToast_ShowAndDismiss(t *testing.T) {
	toast := NewToast(time.Second)
	if toast.IsVisible() {
		t.Fatal("new toast should be hidden")
	}

	if cmd := toast.Success("Moved task"); cmd == nil {
		t.Fatal("Show should schedule a dismissal")
	}
	if !toast.IsVisible() || toast.Message() != "Moved task" {
		t.Errorf("message = %q", toast.Message())
	}
	if got := toast.View(80); got == "" {
		t.Error("visible toast should render")
	}

	toast.Update(ToastDismissMsg{Seq: toast.seq})
	if toast.IsVisible() {
		t.Error("toast should hide on its own dismissal")
	}
	if toast.View(80) != "" {
		t.Error("hidden toast renders nothing")
	}
}

func TestToast_StaleDismissIgnored(t *testing.T) {
	toast := NewToast(time.Second)
	toast.Success("first")
	stale := toast.seq
	toast.Failure("Move failed", "server error")

	toast.Update(ToastDismissMsg{Seq: stale})
	if !toast.IsVisible() {
		t.Fatal("older dismissal must not hide the newer toast")
	}
	if toast.Level() != mutation.LevelFailure {
		t.Error("level should be failure")
	}
}

func TestToast_DefaultTTL(t *testing.T) {
	if NewToast(0).ttl != 3*time.Second {
		t.Error("zero ttl should fall back to 3s")
	}
}
