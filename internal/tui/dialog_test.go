package tui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestDialog_Confirm(t *testing.T) {
	d := NewDialog()
	called := false
	d.Show("Delete task", "Delete it?", func() tea.Cmd {
		called = true
		return nil
	})

	d.Update(key("y"))
	if !called || d.IsVisible() {
		t.Errorf("called=%v visible=%v", called, d.IsVisible())
	}
}

func TestDialog_CancelAndEnter(t *testing.T) {
	d := NewDialog()
	called := false
	confirm := func() tea.Cmd {
		called = true
		return nil
	}

	d.Show("Delete task", "Delete it?", confirm)
	d.Update(key("esc"))
	if called || d.IsVisible() {
		t.Fatal("esc should cancel")
	}

	// Enter on the default button declines.
	d.Show("Delete task", "Delete it?", confirm)
	d.Update(key("enter"))
	if called {
		t.Fatal("enter on No should not confirm")
	}

	d.Show("Delete task", "Delete it?", confirm)
	d.Update(key("tab"))
	d.Update(key("enter"))
	if !called {
		t.Error("enter on Yes should confirm")
	}
}
