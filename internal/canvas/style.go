package canvas

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Style is the resolved presentation of a shape.
type Style struct {
	Stroke      color.RGBA
	Fill        color.RGBA
	StrokeWidth float64
	Opacity     float64
	Dashed      bool
}

// DefaultStyle is used when no profile style applies.
func DefaultStyle() Style {
	return Style{
		Stroke:      color.RGBA{R: 0xff, A: 0xff},
		Fill:        color.RGBA{},
		StrokeWidth: 2,
		Opacity:     1,
	}
}

// StyleFromRecord extracts presentation properties from a sanitized shape
// record, falling back to defaults for anything absent.
func StyleFromRecord(rec map[string]any) Style {
	st := DefaultStyle()
	if s, ok := rec["stroke"].(string); ok {
		if c, err := ParseColor(s); err == nil {
			st.Stroke = c
		}
	}
	if s, ok := rec["fill"].(string); ok {
		if c, err := ParseColor(s); err == nil {
			st.Fill = c
		}
	}
	if w, ok := rec["strokeWidth"].(float64); ok {
		st.StrokeWidth = w
	}
	if o, ok := rec["opacity"].(float64); ok {
		st.Opacity = o
	}
	if dashes, ok := rec["strokeDashArray"].([]float64); ok && len(dashes) > 0 {
		st.Dashed = true
	}
	return st
}

// ParseColor accepts #RRGGBB, #RRGGBBAA, or an SVG 1.1 color name.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color")
	}
	if !strings.HasPrefix(s, "#") {
		if c, ok := colornames.Map[strings.ToLower(s)]; ok {
			return c, nil
		}
		return color.RGBA{}, fmt.Errorf("unknown color name %q", s)
	}
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{
			R: uint8(val >> 16),
			G: uint8((val >> 8) & 0xFF),
			B: uint8(val & 0xFF),
			A: 255,
		}, nil
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{
			R: uint8(val >> 24),
			G: uint8((val >> 16) & 0xFF),
			B: uint8((val >> 8) & 0xFF),
			A: uint8(val & 0xFF),
		}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid hex color length %d", len(hex))
}

// FormatColor renders a color the way ParseColor reads it back.
func FormatColor(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
