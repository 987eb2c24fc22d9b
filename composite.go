package stickerstroke

import (
	"fmt"
	"image"
	"image/draw"
)

// StrokeLayer builds a flat layer of color c whose alpha is the stroke mask.
func StrokeLayer(mask StrokeMask, c Color) *image.NRGBA {
	layer := image.NewNRGBA(image.Rect(0, 0, mask.W, mask.H))
	for y := range mask.H {
		row := layer.Pix[y*layer.Stride:]
		for x := range mask.W {
			o := x * 4
			row[o] = c.R
			row[o+1] = c.G
			row[o+2] = c.B
			row[o+3] = Alpha(mask.Pix[y*mask.W+x])
		}
	}
	return layer
}

// CompositeStroke draws fitted over a stroke layer of color c. Pixels where
// fitted is fully opaque come through unchanged.
func CompositeStroke(fitted *image.RGBA, mask StrokeMask, c Color) (*image.RGBA, error) {
	b := fitted.Bounds()
	if b.Dx() != mask.W || b.Dy() != mask.H {
		return nil, fmt.Errorf("composite %dx%d over %dx%d: %w", b.Dx(), b.Dy(), mask.W, mask.H, ErrSizeMismatch)
	}
	out := image.NewRGBA(image.Rect(0, 0, mask.W, mask.H))
	// Bottom -> top: stroke, then the image with premultiplied source-over.
	draw.Draw(out, out.Bounds(), StrokeLayer(mask, c), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), fitted, b.Min, draw.Over)
	return out, nil
}
