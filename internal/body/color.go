package body

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a linear RGB triple with components in [0, 1].
type Color struct {
	R, G, B float64
}

// Editor defaults.
var (
	DefaultOceanColor     = Color{R: 0x44 / 255.0, G: 0x88 / 255.0, B: 0xff / 255.0}
	DefaultRingInnerColor = Color{R: 0xff / 255.0, G: 0xd7 / 255.0, B: 0x00 / 255.0}
	DefaultRingOuterColor = Color{R: 0xda / 255.0, G: 0xa5 / 255.0, B: 0x20 / 255.0}
)

// ParseHexColor decodes "#RRGGBB" or "#RGB". A missing leading '#' is
// tolerated. The fallback is returned with ok=false for anything else.
func ParseHexColor(s string, fallback Color) (c Color, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, false
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 7 && len(s) != 4 {
		return fallback, false
	}
	parsed, err := colorful.Hex(s)
	if err != nil {
		return fallback, false
	}
	return Color{R: parsed.R, G: parsed.G, B: parsed.B}, true
}

// Hex formats the colour as "#rrggbb".
func (c Color) Hex() string {
	return c.toColorful().Clamped().Hex()
}

// Blend mixes c toward other by t in RGB space.
func (c Color) Blend(other Color, t float64) Color {
	b := c.toColorful().BlendRgb(other.toColorful(), t)
	return Color{R: b.R, G: b.G, B: b.B}
}

// Scale multiplies every component, clamping the result to [0, 1].
func (c Color) Scale(f float64) Color {
	s := colorful.Color{R: c.R * f, G: c.G * f, B: c.B * f}.Clamped()
	return Color{R: s.R, G: s.G, B: s.B}
}

func (c Color) toColorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}
