package tui

import "testing"

func TestCalculateLayout_Desktop(t *testing.T) {
	l := CalculateLayout(160, 40, false, 0)

	if l.IsCompact() {
		t.Fatal("160 columns should be desktop")
	}
	if l.Sidebar.Dx() != SidebarWidthDesktop {
		t.Errorf("sidebar width = %d", l.Sidebar.Dx())
	}
	if l.Board.Max.X >= l.Sidebar.Min.X {
		t.Error("board overlaps sidebar")
	}
	if l.Header.Min.Y != 0 || l.Filter.Min.Y != 1 || l.Board.Min.Y != 2 {
		t.Errorf("rows: header %d filter %d board %d", l.Header.Min.Y, l.Filter.Min.Y, l.Board.Min.Y)
	}
	if l.Footer.Max.Y != 40 || l.Status.Max.Y != l.Footer.Min.Y {
		t.Error("status and footer should sit at the bottom")
	}
	if !l.Late.Empty() {
		t.Error("no late strip requested")
	}
}

func TestCalculateLayout_Compact(t *testing.T) {
	for _, tc := range []struct {
		name   string
		width  int
		hidden bool
	}{
		{"narrow", 100, false},
		{"hidden", 160, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := CalculateLayout(tc.width, 40, tc.hidden, 0)
			if !l.IsCompact() {
				t.Fatal("expected compact")
			}
			if !l.Sidebar.Empty() {
				t.Error("compact has no sidebar")
			}
			if l.Board.Dx() != tc.width {
				t.Errorf("board width = %d", l.Board.Dx())
			}
		})
	}
}

func TestCalculateLayout_LateStrip(t *testing.T) {
	l := CalculateLayout(100, 40, true, 4)

	if l.Late.Dy() != 4 {
		t.Errorf("late rows = %d", l.Late.Dy())
	}
	if l.Board.Max.Y != l.Late.Min.Y {
		t.Error("late strip should sit under the lanes")
	}
	if l.Late.Max.Y != l.Status.Min.Y {
		t.Error("late strip should end at the status bar")
	}
}
