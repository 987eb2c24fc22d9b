package stickerstroke

import (
	"fmt"
	"image"
	"image/color"
)

// OpacityMask is the thresholded alpha channel: 255 where the source pixel
// counts as opaque, 0 elsewhere.
type OpacityMask struct {
	W, H int
	Pix  []uint8 // len = W*H
}

// NewOpacityMask marks pixels with alpha > threshold as opaque.
func NewOpacityMask(img image.Image, threshold int) (OpacityMask, error) {
	if err := checkThreshold(threshold); err != nil {
		return OpacityMask{}, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return OpacityMask{}, fmt.Errorf("opacity mask %dx%d: %w", w, h, ErrEmptyImage)
	}
	m := OpacityMask{W: w, H: h, Pix: make([]uint8, w*h)}
	t := uint8(threshold)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := range h {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := range w {
				if row[x*4+3] > t {
					m.Pix[y*w+x] = 255
				}
			}
		}
		return m, nil
	}
	for y := range h {
		for x := range w {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if uint8(a>>8) > t {
				m.Pix[y*w+x] = 255
			}
		}
	}
	return m, nil
}

func (m OpacityMask) Opaque(x, y int) bool {
	return m.Pix[y*m.W+x] != 0
}

// Count returns the number of opaque pixels.
func (m OpacityMask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

func (m OpacityMask) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.W, m.H))
	for y := range m.H {
		for x := range m.W {
			g.SetGray(x, y, color.Gray{Y: m.Pix[y*m.W+x]})
		}
	}
	return g
}
