package tui

import (
	uv "github.com/charmbracelet/ultraviolet"
)

// Footer shows key hints for the current mode.
type Footer struct {
	hints string
}

// NewFooter creates a footer showing the board hints.
func NewFooter() *Footer {
	return &Footer{hints: HintBoard()}
}

// SetHints replaces the hint line.
func (f *Footer) SetHints(h string) {
	f.hints = h
}

// Draw renders the hints, cut to the area width.
func (f *Footer) Draw(scr uv.Screen, area uv.Rectangle) {
	if area.Dy() < 1 {
		return
	}
	DrawText(scr, uv.Rect(area.Min.X+1, area.Min.Y, area.Dx()-1, 1), truncateStyled(f.hints, area.Dx()-1))
}
