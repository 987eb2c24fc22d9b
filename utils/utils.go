package utils

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	ss "github.com/setanarut/stickerstroke"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// SortPaletteByBrightness orders colors from darkest to brightest.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dominantcolor", "dominant":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	}
	return PaletteMethodDominantColor, fmt.Errorf("unknown palette method %q", s)
}

// ExtractDominantPalette runs dominantcolor over img, then re-weights each
// candidate by the visible pixels nearest to it in Lab. Candidates that only
// come from the transparent background get no weight and are dropped.
func ExtractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	samples := visibleSamples(img)
	if len(samples) == 0 {
		return nil
	}
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	if len(candidates) == 0 {
		return nil
	}

	cols := make([]colorful.Color, len(candidates))
	labs := make([][3]float64, len(candidates))
	for i, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		cols[i] = col.Clamped()
		labs[i] = lab(cols[i])
	}
	counts := make([]float64, len(cols))
	for _, s := range samples {
		sl := lab(s)
		best, bestD := 0, math.MaxFloat64
		for i, l := range labs {
			if d := labDist2(sl, l); d < bestD {
				best, bestD = i, d
			}
		}
		counts[best]++
	}

	weighted := make([]weightedColor, 0, len(cols))
	for i, col := range cols {
		if counts[i] > 0 {
			weighted = append(weighted, weightedColor{Col: col, Weight: counts[i]})
		}
	}
	return SelectDiverseWeightedColors(weighted, k)
}

const maxPaletteSamples = 12000

// visibleSamples returns the colors of the non-transparent pixels of img,
// taken on a grid coarse enough to keep about maxPaletteSamples of them.
func visibleSamples(img image.Image) []colorful.Color {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n <= 0 {
		return nil
	}
	step := 1
	if n > maxPaletteSamples {
		step = int(math.Sqrt(float64(n)/maxPaletteSamples)) + 1
	}
	var out []colorful.Color
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			out = append(out, colorful.Color{
				R: float64(c.R) / 255.0,
				G: float64(c.G) / 255.0,
				B: float64(c.B) / 255.0,
			})
		}
	}
	return out
}

func lab(c colorful.Color) [3]float64 {
	l, a, b := c.Lab()
	return [3]float64{l, a, b}
}

func labDist2(p, q [3]float64) float64 {
	d0, d1, d2 := p[0]-q[0], p[1]-q[1], p[2]-q[2]
	return d0*d0 + d1*d1 + d2*d2
}

// SelectDiverseWeightedColors greedily picks k colors that are far apart in
// Lab, starting from the heaviest one.
func SelectDiverseWeightedColors(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	type item struct {
		col colorful.Color
		lab [3]float64
		w   float64
	}
	items := make([]item, 0, len(cands))
	maxW := 0.0
	for _, c := range cands {
		col := c.Col.Clamped()
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		if w > maxW {
			maxW = w
		}
		items = append(items, item{col: col, lab: lab(col), w: w})
	}
	if k > len(items) {
		k = len(items)
	}
	if maxW <= 0 {
		maxW = 1.0
	}

	selectedIdx := make([]int, 0, k)
	selected := make([]bool, len(items))

	bestSeed := 0
	for i := 1; i < len(items); i++ {
		if items[i].w > items[bestSeed].w {
			bestSeed = i
		}
	}
	selectedIdx = append(selectedIdx, bestSeed)
	selected[bestSeed] = true

	for len(selectedIdx) < k {
		bestIdx := -1
		bestScore := -1.0
		for i := range items {
			if selected[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range selectedIdx {
				minD2 = min(minD2, labDist2(items[i].lab, items[s].lab))
			}
			normW := items[i].w / maxW
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(normW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
	}

	out := make([]colorful.Color, 0, len(selectedIdx))
	for _, idx := range selectedIdx {
		out = append(out, items[idx].col)
	}
	return out
}

// ExtractKMeansPalette clusters the visible pixels of img. Fully transparent
// pixels are skipped so the background does not become a palette entry.
func ExtractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}

	samples := visibleSamples(img)
	if len(samples) == 0 {
		return nil
	}
	dataset := make(clusters.Observations, len(samples))
	for i, c := range samples {
		dataset[i] = clusters.Coordinates{c.R, c.G, c.B}
	}

	workK := min(max(k*4, k+2), len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	// Most populated clusters first.
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		center := c.Center
		if len(center) < 3 {
			continue
		}
		col := colorful.Color{R: center[0], G: center[1], B: center[2]}.Clamped()
		weighted = append(weighted, weightedColor{Col: col, Weight: max(float64(len(c.Observations)), 1e-6)})
	}
	return SelectDiverseWeightedColors(weighted, k)
}

// ExtractPalette falls back to dominantcolor when kmeans finds nothing.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	if method == PaletteMethodKMeans {
		if p := ExtractKMeansPalette(img, k); len(p) != 0 {
			return p
		}
	}
	return ExtractDominantPalette(img, k)
}

// ============ STROKE COLOR ============

// ContrastingColor picks the stroke color that stands apart most from the
// palette in Lab: white, black, or the hue complement of a palette entry.
// An empty palette yields white.
func ContrastingColor(palette []colorful.Color) ss.Color {
	if len(palette) == 0 {
		return ss.White
	}
	cands := []colorful.Color{ss.White.Colorful(), ss.Black.Colorful()}
	for _, c := range palette {
		h, s, v := c.Hsv()
		cands = append(cands, colorful.Hsv(math.Mod(h+180, 360), s, v).Clamped())
	}

	best := cands[0]
	bestD := -1.0
	for _, cand := range cands {
		d := math.MaxFloat64
		for _, p := range palette {
			d = min(d, cand.DistanceLab(p))
		}
		if d > bestD {
			bestD = d
			best = cand
		}
	}
	return ss.FromColorful(best)
}

// AutoStrokeColor extracts a small palette from img and returns the color
// that contrasts with it best.
func AutoStrokeColor(img image.Image, method PaletteMethod) ss.Color {
	palette := ExtractPalette(img, 5, method)
	SortPaletteByBrightness(palette)
	return ContrastingColor(palette)
}

// ============ FILE I/O ============

var ErrUnknownFormat = errors.New("unknown image format")

// Format is an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpg"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatGIF  Format = "gif"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	case "gif":
		return FormatGIF, nil
	case "webp":
		// x/image/webp only decodes.
		return "", fmt.Errorf("%w: webp is read-only", ErrUnknownFormat)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ReadImage decodes a png, jpeg, gif (first frame), bmp, tiff or webp file.
// Every format but webp can also be written with SaveImageAs.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func SaveImage(img image.Image, filename string) error {
	return SaveImageAs(img, filename, FormatPNG)
}

// SaveImageAs encodes img in the given format. JPEG has no alpha channel, so
// the image is flattened onto white first.
func SaveImageAs(img image.Image, filename string, format Format) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	switch format {
	case FormatPNG:
		return png.Encode(f, img)
	case FormatJPEG:
		return jpeg.Encode(f, Flatten(img, color.White), &jpeg.Options{Quality: 95})
	case FormatBMP:
		return bmp.Encode(f, img)
	case FormatTIFF:
		return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatGIF:
		return gif.Encode(f, Paletted(img), nil)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
}

// Flatten composites img over an opaque background.
func Flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

// Paletted maps img onto the web-safe palette plus one transparent entry.
// GIF transparency is binary, so pixels below half alpha become transparent.
func Paletted(img image.Image) *image.Paletted {
	pal := make(color.Palette, 0, len(palette.WebSafe)+1)
	pal = append(pal, color.NRGBA{})
	pal = append(pal, palette.WebSafe...)

	b := img.Bounds()
	out := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal)
	opaque := pal[1:]
	for y := range b.Dy() {
		for x := range b.Dx() {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			if c.A < 128 {
				continue
			}
			c.A = 255
			out.SetColorIndex(x, y, uint8(opaque.Index(c)+1))
		}
	}
	return out
}

// OutputName builds "stem_seq.ext" from a source file name. The stem ends at
// the first dot, so "cat.small.png" becomes "cat_1.png".
func OutputName(fileName string, seq int, format Format) string {
	stem, _, _ := strings.Cut(filepath.Base(fileName), ".")
	return stem + "_" + strconv.Itoa(seq) + "." + string(format)
}

var errNotBuilt = errors.New("sticker builder has no output")

// SaveDebugImages writes the mask, distance field and stroke layer of a built
// StickerBuilder to dir as stem_mask.png, stem_distance.png and stem_stroke.png.
func SaveDebugImages(sb *ss.StickerBuilder, c ss.Color, dir, stem string) error {
	if sb.Result() == nil {
		return errNotBuilt
	}
	layers := []struct {
		name string
		img  image.Image
	}{
		{"mask", sb.MaskImage()},
		{"distance", sb.DistanceImage()},
		{"stroke", sb.StrokeLayerImage(c)},
	}
	for _, l := range layers {
		if err := SaveImage(l.img, filepath.Join(dir, stem+"_"+l.name+".png")); err != nil {
			return err
		}
	}
	return nil
}
