package theme

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// InterpolateColor blends two #rrggbb colors; pos is clamped to [0, 1].
func InterpolateColor(colorA, colorB string, pos float64) string {
	switch {
	case pos < 0:
		pos = 0
	case pos > 1:
		pos = 1
	}
	r1, g1, b1 := ParseHexColor(colorA)
	r2, g2, b2 := ParseHexColor(colorB)
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-pos) + float64(b)*pos)
	}
	return FormatHexColor(mix(r1, r2), mix(g1, g2), mix(b1, b2))
}

// ParseHexColor extracts RGB values from a hex color string. Malformed
// input yields black.
func ParseHexColor(hex string) (uint8, uint8, uint8) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	var r, g, b uint8
	if len(hex) == 6 {
		_, _ = fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	}
	return r, g, b
}

// FormatHexColor converts RGB values to a hex color string.
func FormatHexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// ApplyGradient colors each rune of text along a from-to gradient.
func ApplyGradient(text, from, to string) string {
	runes := []rune(text)
	var b strings.Builder
	for i, r := range runes {
		pos := 0.0
		if len(runes) > 1 {
			pos = float64(i) / float64(len(runes)-1)
		}
		b.WriteString(lipgloss.NewStyle().Foreground(HexToColor(InterpolateColor(from, to, pos))).Render(string(r)))
	}
	return b.String()
}
