package theme

import (
	"image/color"
	"sync"

	"charm.land/lipgloss/v2"

	"github.com/mark3labs/taskdeck/internal/board"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string
	Secondary string
	Tertiary  string

	// Background hierarchy (dark→light)
	BgCrust    string
	BgBase     string
	BgMantle   string
	BgSurface0 string
	BgSurface1 string
	BgSurface2 string
	BgOverlay  string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string
	FgBright string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Category tokens
	Categories map[board.Color]string

	styles     *Styles
	stylesOnce sync.Once
}

var (
	current   *Theme
	currentMu sync.RWMutex
)

// Current returns the active theme.
func Current() *Theme {
	currentMu.RLock()
	defer currentMu.RUnlock()
	if current == nil {
		return defaultTheme
	}
	return current
}

// SetCurrent replaces the active theme.
func SetCurrent(t *Theme) {
	currentMu.Lock()
	current = t
	currentMu.Unlock()
}

var defaultTheme = NewCatppuccinMocha()

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

// CategoryColor maps a category token to a hex color.
func (t *Theme) CategoryColor(c board.Color) string {
	if hex, ok := t.Categories[c]; ok {
		return hex
	}
	return t.FgMuted
}

// HexToColor converts a #rrggbb string to a color.
func HexToColor(hex string) color.Color {
	return lipgloss.Color(hex)
}

func (t *Theme) buildStyles() *Styles {
	c := lipgloss.Color
	return &Styles{
		HeaderTitle: lipgloss.NewStyle().
			Foreground(c(t.Primary)).
			Bold(true),
		HeaderUser: lipgloss.NewStyle().
			Foreground(c(t.FgSubtle)),
		PanelTitle: lipgloss.NewStyle().
			Foreground(c(t.FgSubtle)).
			Bold(true),
		PanelTitleFocused: lipgloss.NewStyle().
			Foreground(c(t.Primary)).
			Bold(true),
		PanelRule: lipgloss.NewStyle().
			Foreground(c(t.BgSurface1)),
		PanelRuleFocused: lipgloss.NewStyle().
			Foreground(c(t.Primary)),
		Card: lipgloss.NewStyle().
			Foreground(c(t.FgBase)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.BgSurface2)).
			Padding(0, 1),
		CardSelected: lipgloss.NewStyle().
			Foreground(c(t.FgBright)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.Primary)).
			Padding(0, 1),
		CardDragging: lipgloss.NewStyle().
			Foreground(c(t.FgMuted)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.FgMuted)).
			Padding(0, 1),
		LaneDropTarget: lipgloss.NewStyle().
			Background(c(InterpolateColor(t.BgBase, t.Primary, 0.15))),
		Muted: lipgloss.NewStyle().
			Foreground(c(t.FgMuted)),
		Subtle: lipgloss.NewStyle().
			Foreground(c(t.FgSubtle)),
		Overdue: lipgloss.NewStyle().
			Foreground(c(t.Error)).
			Bold(true),
		StatusBar: lipgloss.NewStyle().
			Foreground(c(t.FgSubtle)).
			Background(c(t.BgMantle)),
		HintKey: lipgloss.NewStyle().
			Foreground(c(t.FgSubtle)),
		HintDesc: lipgloss.NewStyle().
			Foreground(c(t.FgMuted)),
		ToastSuccess: lipgloss.NewStyle().
			Foreground(c(t.BgBase)).
			Background(c(t.Success)).
			Padding(0, 1).
			Bold(true),
		ToastFailure: lipgloss.NewStyle().
			Foreground(c(t.BgBase)).
			Background(c(t.Error)).
			Padding(0, 1).
			Bold(true),
		ModalBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.Primary)).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(c(t.Primary)).
			Bold(true),
		Button: lipgloss.NewStyle().
			Foreground(c(t.FgBase)).
			Background(c(t.BgSurface1)).
			Padding(0, 2),
		ButtonFocused: lipgloss.NewStyle().
			Foreground(c(t.BgBase)).
			Background(c(t.Primary)).
			Padding(0, 2),
		Error: lipgloss.NewStyle().
			Foreground(c(t.Error)),
	}
}
