package theme

import "github.com/mark3labs/taskdeck/internal/board"

// NewCatppuccinMocha creates the default Catppuccin Mocha theme.
func NewCatppuccinMocha() *Theme {
	return &Theme{
		Name:   "catppuccin-mocha",
		IsDark: true,

		Primary:   "#cba6f7", // Mauve
		Secondary: "#89b4fa", // Blue
		Tertiary:  "#b4befe", // Lavender

		BgCrust:    "#11111b",
		BgBase:     "#1e1e2e",
		BgMantle:   "#181825",
		BgSurface0: "#313244",
		BgSurface1: "#45475a",
		BgSurface2: "#585b70",
		BgOverlay:  "#6c7086",

		FgMuted:  "#7f849c",
		FgSubtle: "#a6adc8",
		FgBase:   "#cdd6f4",
		FgBright: "#f5e0dc",

		Success: "#a6e3a1",
		Warning: "#f9e2af",
		Error:   "#f38ba8",
		Info:    "#89dceb",

		Categories: map[board.Color]string{
			board.ColorRed:    "#f38ba8",
			board.ColorOrange: "#fab387",
			board.ColorYellow: "#f9e2af",
			board.ColorGreen:  "#a6e3a1",
			board.ColorBlue:   "#89b4fa",
			board.ColorPurple: "#cba6f7",
			board.ColorPink:   "#f5c2e7",
			board.ColorGray:   "#9399b2",
		},
	}
}
