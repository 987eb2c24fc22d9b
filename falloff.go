package stickerstroke

import (
	"fmt"
	"image"
	"image/color"
)

// StrokeMask holds the stroke opacity per pixel, each in [0,1].
type StrokeMask struct {
	W, H int
	Pix  []float64 // len = W*H
}

func (m StrokeMask) At(x, y int) float64 {
	return m.Pix[y*m.W+x]
}

// Alpha converts an opacity to an 8-bit alpha, rounding half up.
func Alpha(opacity float64) uint8 {
	return uint8(max(0, min(255, opacity*255+0.5)))
}

func (m StrokeMask) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.W, m.H))
	for y := range m.H {
		for x := range m.W {
			g.SetGray(x, y, color.Gray{Y: Alpha(m.Pix[y*m.W+x])})
		}
	}
	return g
}

// StrokeOpacity maps a distance to stroke opacity. The stroke is solid up to
// strokeWidth-1 and then fades linearly to zero over one more pixel.
// strokeWidth must be at least 1; see ComputeStrokeOpacity.
func StrokeOpacity(d float64, strokeWidth int) float64 {
	w := float64(strokeWidth - 1)
	switch {
	case d <= w:
		return 1
	case d <= w+1:
		return 1 - (d - w)
	default:
		return 0
	}
}

// ComputeStrokeOpacity applies StrokeOpacity to every pixel of field.
func ComputeStrokeOpacity(field DistanceField, strokeWidth int) (StrokeMask, error) {
	if err := checkStrokeWidth(strokeWidth); err != nil {
		return StrokeMask{}, err
	}
	w, h := field.Width(), field.Height()
	if w <= 0 || h <= 0 {
		return StrokeMask{}, fmt.Errorf("stroke mask %dx%d: %w", w, h, ErrEmptyImage)
	}
	out := StrokeMask{W: w, H: h, Pix: make([]float64, w*h)}
	raw := field.d.RawMatrix()
	for y := range h {
		for x := range w {
			out.Pix[y*w+x] = StrokeOpacity(raw.Data[y*raw.Stride+x], strokeWidth)
		}
	}
	return out, nil
}
