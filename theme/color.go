// Package theme parses accent colors and derives the tints templates use.
//
// Accent colors arrive either as CSS hex strings ("#3b82f6") or as bare HSL
// triples ("221 83% 53%") as stored by the editor's color picker.
package theme

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// DefaultAccent is the editor's default accent, a saturated blue.
const DefaultAccent = "221 83% 53%"

// Common neutrals used by templates.
var (
	White    = color.RGBA{0xff, 0xff, 0xff, 0xff}
	Black    = color.RGBA{0x0a, 0x0a, 0x0a, 0xff}
	Gray50   = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	Gray100  = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	Gray200  = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	Gray300  = color.RGBA{0xd1, 0xd5, 0xdb, 0xff}
	Gray500  = color.RGBA{0x6b, 0x72, 0x80, 0xff}
	Gray600  = color.RGBA{0x4b, 0x55, 0x63, 0xff}
	Gray700  = color.RGBA{0x37, 0x41, 0x51, 0xff}
	Gray800  = color.RGBA{0x1f, 0x29, 0x37, 0xff}
	Muted    = color.RGBA{0x73, 0x73, 0x73, 0xff}
	Border   = color.RGBA{0xe5, 0xe5, 0xe5, 0xff}
	RowTint  = color.RGBA{0xf7, 0xf7, 0xf7, 0xff}
	Ink      = color.RGBA{0x17, 0x17, 0x17, 0xff}
	Fallback = mustParse(DefaultAccent)
)

func mustParse(s string) color.RGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse converts an accent string to an opaque color.
// Accepted forms: "#rgb", "#rrggbb", "hsl(h, s%, l%)", "hsl(h s% l%)" and "h s% l%".
func Parse(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(strings.ToLower(s), "hsl(") && strings.HasSuffix(s, ")"):
		return parseHSL(s[4 : len(s)-1])
	case s == "":
		return color.RGBA{}, fmt.Errorf("theme: empty color")
	}
	return parseHSL(s)
}

// Resolve parses s and returns fallback when s is not a valid color.
func Resolve(s string, fallback color.RGBA) color.RGBA {
	c, err := Parse(s)
	if err != nil {
		return fallback
	}
	return c
}

func parseHex(h string) (color.RGBA, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("theme: invalid hex color %q", "#"+h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("theme: invalid hex color %q", "#"+h)
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}, nil
}

func parseHSL(s string) (color.RGBA, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '/' })
	if len(fields) != 3 {
		return color.RGBA{}, fmt.Errorf("theme: invalid hsl color %q", s)
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "deg"), 64)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("theme: invalid hue %q", fields[0])
	}
	sat, err := percent(fields[1])
	if err != nil {
		return color.RGBA{}, err
	}
	light, err := percent(fields[2])
	if err != nil {
		return color.RGBA{}, err
	}
	return HSL(h, sat, light), nil
}

func percent(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || v < 0 || v > 100 {
		return 0, fmt.Errorf("theme: invalid percentage %q", s)
	}
	return v / 100, nil
}

// HSL converts hue in degrees and saturation/lightness in [0,1] to RGB.
func HSL(h, s, l float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.RGBA{channel(r + m), channel(g + m), channel(b + m), 0xff}
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// Mix blends c toward other by t in [0,1].
func Mix(c, other color.RGBA, t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a)*(1-t) + float64(b)*t))
	}
	return color.RGBA{mix(c.R, other.R), mix(c.G, other.G), mix(c.B, other.B), 0xff}
}

// Lighten blends c toward white by t.
func Lighten(c color.RGBA, t float64) color.RGBA { return Mix(c, White, t) }

// Hex formats c as "#rrggbb".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
