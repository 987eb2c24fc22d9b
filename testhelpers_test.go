package stickerstroke

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = Color{0, 0, 255}
)

// squareImage returns a size x size transparent image with an opaque square
// covering r.
func squareImage(size int, r image.Rectangle, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// bruteDistance is the exact distance from (x, y) to the nearest opaque
// pixel of m, found by checking every pixel.
func bruteDistance(m OpacityMask, x, y int) float64 {
	best := math.Inf(1)
	for j := range m.H {
		for i := range m.W {
			if m.Opaque(i, j) {
				best = min(best, math.Hypot(float64(i-x), float64(j-y)))
			}
		}
	}
	return best
}

func nearlyEqual(a, b float64) bool {
	if math.IsInf(a, 1) || math.IsInf(b, 1) {
		return a == b
	}
	return math.Abs(a-b) < 1e-9
}
