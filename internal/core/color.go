package core

import (
	"fmt"
	"strings"
)

// Color is one of the seven rainbow ordinals a falling shape can carry.
// Stages use a prefix of this palette (see PaletteSize).
type Color uint8

// Rainbow colors in palette order.
const (
	ColorRed Color = iota
	ColorOrange
	ColorYellow
	ColorGreen
	ColorBlue
	ColorIndigo
	ColorViolet
)

// ColorCount is the size of the full rainbow palette.
const ColorCount = 7

// Palette size bounds accepted by stages.
const (
	MinPaletteSize = 3
	MaxPaletteSize = ColorCount
)

var colorNames = [ColorCount]string{"red", "orange", "yellow", "green", "blue", "indigo", "violet"}

// String returns the lowercase color name.
func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "unknown"
}

// Valid reports whether c is one of the seven rainbow colors.
func (c Color) Valid() bool {
	return int(c) < ColorCount
}

// ParseColor converts a color name to a Color.
func ParseColor(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range colorNames {
		if name == s {
			return Color(i), true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("core: invalid color %d", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("core: unknown color %q", text)
	}
	*c = parsed
	return nil
}

// PaletteSize clamps a configured palette size into [MinPaletteSize, MaxPaletteSize].
func PaletteSize(n int) int {
	return Clamp(n, MinPaletteSize, MaxPaletteSize)
}
