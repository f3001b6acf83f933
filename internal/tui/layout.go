package tui

import uv "github.com/charmbracelet/ultraviolet"

// Layout breakpoints and dimensions
const (
	// CompactWidthBreakpoint is the minimum width for showing the sidebar
	CompactWidthBreakpoint = 120
	// SidebarWidthDesktop is the width of the activity sidebar
	SidebarWidthDesktop = 40
	HeaderHeight        = 1
	FilterHeight        = 1
	StatusHeight        = 1
	FooterHeight        = 1
)

// LayoutMode represents the layout mode based on terminal size
type LayoutMode int

const (
	// LayoutDesktop leaves room for the sidebar
	LayoutDesktop LayoutMode = iota
	// LayoutCompact has no sidebar
	LayoutCompact
)

// Layout defines the rectangular regions for all UI components
type Layout struct {
	Mode    LayoutMode
	Area    uv.Rectangle
	Header  uv.Rectangle
	Filter  uv.Rectangle
	Board   uv.Rectangle
	Late    uv.Rectangle
	Sidebar uv.Rectangle
	Status  uv.Rectangle
	Footer  uv.Rectangle
}

// IsCompact returns true if the layout is in compact mode
func (l Layout) IsCompact() bool {
	return l.Mode == LayoutCompact
}

// CalculateLayout computes the layout rectangles. lateRows reserves a strip
// under the lanes for tasks whose status has no lane.
func CalculateLayout(width, height int, sidebarHidden bool, lateRows int) Layout {
	mode := LayoutDesktop
	if width < CompactWidthBreakpoint || sidebarHidden {
		mode = LayoutCompact
	}

	area := uv.Rectangle{Max: uv.Position{X: width, Y: height}}
	chrome := HeaderHeight + FilterHeight + StatusHeight + FooterHeight

	header, rest := uv.SplitVertical(area, uv.Fixed(HeaderHeight))
	filter, rest := uv.SplitVertical(rest, uv.Fixed(FilterHeight))
	content, rest := uv.SplitVertical(rest, uv.Fixed(max(area.Dy()-chrome, 0)))
	status, footer := uv.SplitVertical(rest, uv.Fixed(StatusHeight))

	main := content
	var sidebar uv.Rectangle
	if mode == LayoutDesktop {
		sidebarWidth := min(SidebarWidthDesktop, content.Dx()/3)
		main, sidebar = uv.SplitHorizontal(content, uv.Fixed(content.Dx()-sidebarWidth))
		main.Max.X -= 1
	}

	lanes := main
	var late uv.Rectangle
	if lateRows > 0 && main.Dy() > lateRows {
		lanes, late = uv.SplitVertical(main, uv.Fixed(main.Dy()-lateRows))
	}

	return Layout{
		Mode:    mode,
		Area:    area,
		Header:  header,
		Filter:  filter,
		Board:   lanes,
		Late:    late,
		Sidebar: sidebar,
		Status:  status,
		Footer:  footer,
	}
}
