package stickerstroke

import (
	"fmt"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Fit scales img to fit a size x size transparent canvas, keeping the aspect
// ratio, and centers it. The offset is truncated, so an odd remainder leaves
// the extra pixel on the right or bottom.
func Fit(img image.Image, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, &ConfigError{Field: "canvas size", Value: fmt.Sprint(size), Reason: "must be positive"}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("fit %dx%d: %w", w, h, ErrEmptyImage)
	}

	scale := min(float64(size)/float64(w), float64(size)/float64(h))
	sw := max(1, int(float64(w)*scale))
	sh := max(1, int(float64(h)*scale))

	scaled := image.NewRGBA(image.Rect(0, 0, sw, sh))
	if sw == w && sh == h {
		draw.Draw(scaled, scaled.Bounds(), img, b.Min, draw.Src)
	} else {
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	offX := (size - sw) / 2
	offY := (size - sh) / 2
	dst := image.Rect(offX, offY, offX+sw, offY+sh)
	// Source-over onto a transparent canvas.
	draw.Draw(canvas, dst, scaled, image.Point{}, draw.Over)
	return canvas, nil
}

// Pad surrounds img with a fully transparent margin. A zero margin still
// returns a fresh copy.
func Pad(img *image.RGBA, margin int) (*image.RGBA, error) {
	if margin < 0 {
		return nil, &ConfigError{Field: "padding", Value: fmt.Sprint(margin), Reason: "must not be negative"}
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()+2*margin, b.Dy()+2*margin))
	draw.Draw(out, image.Rect(margin, margin, margin+b.Dx(), margin+b.Dy()), img, b.Min, draw.Src)
	return out, nil
}

// toRGBA normalizes any image to a zero-origin *image.RGBA.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
