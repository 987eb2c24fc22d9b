package stickerstroke

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DistanceField holds, per pixel, the distance to the nearest opaque pixel.
// Rows are y, columns are x. Pixels are +Inf when the mask has no opaque pixel.
type DistanceField struct {
	d *mat.Dense
}

func (f DistanceField) Width() int {
	if f.d == nil {
		return 0
	}
	_, c := f.d.Dims()
	return c
}

func (f DistanceField) Height() int {
	if f.d == nil {
		return 0
	}
	r, _ := f.d.Dims()
	return r
}

func (f DistanceField) At(x, y int) float64 {
	return f.d.At(y, x)
}

// Dense exposes the backing matrix. Callers must not modify it.
func (f DistanceField) Dense() mat.Matrix {
	return f.d
}

// MaxFinite returns the largest finite distance, or 0 if there is none.
func (f DistanceField) MaxFinite() float64 {
	out := 0.0
	for _, v := range f.d.RawMatrix().Data {
		if !math.IsInf(v, 1) && v > out {
			out = v
		}
	}
	return out
}

// Gray renders the field normalized to its largest finite value; opaque
// pixels are black, the farthest pixels white.
func (f DistanceField) Gray() *image.Gray {
	w, h := f.Width(), f.Height()
	g := image.NewGray(image.Rect(0, 0, w, h))
	peak := f.MaxFinite()
	raw := f.d.RawMatrix()
	for y := range h {
		for x := range w {
			v := raw.Data[y*raw.Stride+x]
			var c uint8
			switch {
			case math.IsInf(v, 1):
				c = 255
			case peak > 0:
				c = uint8(max(0, min(255, math.Round(v/peak*255))))
			}
			g.SetGray(x, y, color.Gray{Y: c})
		}
	}
	return g
}

// BuildDistanceField computes the exact Euclidean distance from each pixel to
// the nearest pixel with alpha > threshold.
func BuildDistanceField(img image.Image, threshold int) (DistanceField, error) {
	return BuildDistanceFieldMetric(img, threshold, MetricEuclidean)
}

func BuildDistanceFieldMetric(img image.Image, threshold int, metric Metric) (DistanceField, error) {
	m, err := NewOpacityMask(img, threshold)
	if err != nil {
		return DistanceField{}, err
	}
	return DistanceFromMask(m, metric), nil
}

// DistanceFromMask runs the transform selected by metric over a mask.
func DistanceFromMask(m OpacityMask, metric Metric) DistanceField {
	var data []float64
	switch metric {
	case MetricChamfer:
		data = chamferTransform(m, 1, math.Sqrt2)
	case MetricManhattan:
		data = chamferTransform(m, 1, math.Inf(1))
	default:
		data = euclideanTransform(m)
	}
	return DistanceField{d: mat.NewDense(m.H, m.W, data)}
}

// edtInf stands in for infinity while squared distances are accumulated;
// true infinities would turn the envelope intersections into NaN.
const edtInf = 1e20

// euclideanTransform is the separable lower-envelope transform of
// Felzenszwalb and Huttenlocher: one pass down the columns, one along rows.
func euclideanTransform(m OpacityMask) []float64 {
	w, h := m.W, m.H
	grid := make([]float64, w*h)
	for i, v := range m.Pix {
		if v == 0 {
			grid[i] = edtInf
		}
	}

	n := max(w, h)
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	for x := range w {
		for y := range h {
			f[y] = grid[y*w+x]
		}
		edt1d(f[:h], d[:h], v, z)
		for y := range h {
			grid[y*w+x] = d[y]
		}
	}
	for y := range h {
		row := grid[y*w : (y+1)*w]
		copy(f[:w], row)
		edt1d(f[:w], d[:w], v, z)
		copy(row, d[:w])
	}

	for i, sq := range grid {
		if sq >= edtInf/2 {
			grid[i] = math.Inf(1)
		} else {
			grid[i] = math.Sqrt(sq)
		}
	}
	return grid
}

// edt1d writes the squared distance transform of the sampled function f to d.
// v and z are scratch buffers of at least len(f) and len(f)+1.
func edt1d(f, d []float64, v []int, z []float64) {
	n := len(f)
	if n == 0 {
		return
	}
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)
	for q := 1; q < n; q++ {
		fq := f[q] + float64(q*q)
		s := (fq - (f[v[k]] + float64(v[k]*v[k]))) / float64(2*q-2*v[k])
		for s <= z[k] {
			k--
			s = (fq - (f[v[k]] + float64(v[k]*v[k]))) / float64(2*q-2*v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}
	k = 0
	for q := range n {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}

// chamferTransform is the classic two-pass 3x3 chamfer transform with
// orthogonal step a and diagonal step b. An infinite b gives L1.
func chamferTransform(m OpacityMask, a, b float64) []float64 {
	w, h := m.W, m.H
	grid := make([]float64, w*h)
	inf := math.Inf(1)
	for i, v := range m.Pix {
		if v == 0 {
			grid[i] = inf
		}
	}
	at := func(x, y int) float64 {
		if x < 0 || x >= w || y < 0 || y >= h {
			return inf
		}
		return grid[y*w+x]
	}

	for y := range h {
		for x := range w {
			i := y*w + x
			if grid[i] == 0 {
				continue
			}
			d := grid[i]
			d = min(d, at(x-1, y)+a)
			d = min(d, at(x, y-1)+a)
			d = min(d, at(x-1, y-1)+b)
			d = min(d, at(x+1, y-1)+b)
			grid[i] = d
		}
	}
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			i := y*w + x
			if grid[i] == 0 {
				continue
			}
			d := grid[i]
			d = min(d, at(x+1, y)+a)
			d = min(d, at(x, y+1)+a)
			d = min(d, at(x+1, y+1)+b)
			d = min(d, at(x-1, y+1)+b)
			grid[i] = d
		}
	}
	return grid
}
