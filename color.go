package stickerstroke

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an opaque 8-bit stroke color.
type Color struct {
	R, G, B uint8
}

var (
	White = Color{255, 255, 255}
	Black = Color{0, 0, 0}
)

var namedColors = map[string]Color{
	"white": White,
	"black": Black,
	"red":   {255, 0, 0},
	"green": {0, 255, 0},
	"blue":  {0, 0, 255},
}

// ParseColor accepts "#rrggbb", "#rgb", "r,g,b" or a basic color name.
func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[v]; ok {
		return c, nil
	}
	if strings.Count(v, ",") == 2 {
		var r, g, b int
		if _, err := fmt.Sscanf(strings.ReplaceAll(v, " ", ""), "%d,%d,%d", &r, &g, &b); err == nil &&
			inByte(r) && inByte(g) && inByte(b) {
			return Color{uint8(r), uint8(g), uint8(b)}, nil
		}
		return Color{}, &ConfigError{Field: "color", Value: s, Reason: "components must be 0-255"}
	}
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	if len(v) == 4 {
		v = string([]byte{'#', v[1], v[1], v[2], v[2], v[3], v[3]})
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return Color{}, &ConfigError{Field: "color", Value: s, Reason: "expected #rrggbb, r,g,b or a color name"}
	}
	return FromColorful(c), nil
}

// FromColorful clamps a go-colorful color to 8 bits.
func FromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{r, g, b}
}

func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255.0, G: float64(c.G) / 255.0, B: float64(c.B) / 255.0}
}

// NRGBA returns the color with the given straight alpha.
func (c Color) NRGBA(a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string { return c.Hex() }

func inByte(v int) bool { return v >= 0 && v <= 255 }
