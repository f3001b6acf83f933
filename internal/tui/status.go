package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/board"
	"github.com/mark3labs/taskdeck/internal/tui/theme"
)

// StatusBar shows lane counts on the left and sync activity on the right.
type StatusBar struct {
	lanes    board.Lanes
	late     int
	fetching bool
	pending  int
	journal  bool
	dragging string
	ticking  bool
	spinner  spinner.Model
}

// NewStatusBar creates a status bar. journal marks whether activity is
// being recorded.
func NewStatusBar(journal bool) *StatusBar {
	return &StatusBar{
		journal: journal,
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
}

// SetLanes updates the counts.
func (s *StatusBar) SetLanes(l board.Lanes, late int) {
	s.lanes = l
	s.late = late
}

// SetDragging shows the held card's title, or clears it with "".
func (s *StatusBar) SetDragging(title string) {
	s.dragging = title
}

// SetBusy updates the fetch and pending mutation indicators and starts
// the spinner if needed.
func (s *StatusBar) SetBusy(fetching bool, pending int) tea.Cmd {
	s.fetching = fetching
	s.pending = pending
	if s.busy() && !s.ticking {
		s.ticking = true
		return s.spinner.Tick
	}
	return nil
}

func (s *StatusBar) busy() bool {
	return s.fetching || s.pending > 0
}

// Update advances the spinner while busy.
func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || tick.ID != s.spinner.ID() {
		return nil
	}
	if !s.busy() {
		s.ticking = false
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// Draw renders the bar.
func (s *StatusBar) Draw(scr uv.Screen, area uv.Rectangle) {
	if area.Dx() <= 0 || area.Dy() <= 0 {
		return
	}
	st := theme.Current().S()

	var left string
	if s.dragging != "" {
		left = "Moving " + truncate(s.dragging, area.Dx()/2)
	} else {
		counts := make([]string, 0, len(api.Statuses)+1)
		for _, status := range api.Statuses {
			counts = append(counts, fmt.Sprintf("%s %d", status.Label(), len(s.lanes.Lane(status))))
		}
		if s.late > 0 {
			counts = append(counts, fmt.Sprintf("Other %d", s.late))
		}
		left = strings.Join(counts, " · ")
	}

	var right []string
	switch {
	case s.pending > 0:
		right = append(right, fmt.Sprintf("%s saving %d", s.spinner.View(), s.pending))
	case s.fetching:
		right = append(right, s.spinner.View()+" syncing")
	}
	if s.journal {
		right = append(right, "● journal")
	}

	DrawStyled(scr, area, st.StatusBar.Padding(0, 1), spread(left, strings.Join(right, "  "), area.Dx()-2))
}
