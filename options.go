package stickerstroke

import (
	"fmt"
	"image"
	"strings"
)

// Metric selects the distance transform used for the stroke.
type Metric int

const (
	// MetricEuclidean is the exact L2 transform. Stroke edges are round and
	// uniform in every direction.
	MetricEuclidean Metric = iota
	// MetricChamfer is the 3x3 chamfer approximation (1, sqrt 2). Diagonal
	// edges come out slightly faceted.
	MetricChamfer
	// MetricManhattan is the L1 transform. Corners become diamonds.
	MetricManhattan
)

func (m Metric) String() string {
	switch m {
	case MetricChamfer:
		return "chamfer"
	case MetricManhattan:
		return "manhattan"
	default:
		return "euclidean"
	}
}

// ParseMetric maps a metric name back to its Metric.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "euclidean", "l2":
		return MetricEuclidean, nil
	case "chamfer":
		return MetricChamfer, nil
	case "manhattan", "l1":
		return MetricManhattan, nil
	}
	return MetricEuclidean, &ConfigError{Field: "metric", Value: s, Reason: "unknown distance metric"}
}

type Options struct {
	// Side of the square canvas the source is fitted into.
	// Ignored by Outline, which keeps the native size.
	CanvasSize int
	// Alpha values strictly above Threshold count as opaque. 0-255.
	// 0 means any visible pixel gets outlined; raise it to ignore soft shadows.
	Threshold int
	// Solid stroke width in pixels, followed by one anti-aliased pixel.
	StrokeWidth int
	// Stroke color. Opaque; the stroke alpha comes from the falloff mask.
	Color Color
	// Transparent margin added on every side so the stroke can grow past
	// the canvas edge. Output side is CanvasSize + 2*Padding.
	Padding int
	// Distance transform. Euclidean unless there is a reason to trade quality.
	Metric Metric
}

const (
	DefaultCanvasSize  = 300
	DefaultStrokeWidth = 3
)

func DefaultOptions() Options {
	return Options{
		CanvasSize:  DefaultCanvasSize,
		Threshold:   0,
		StrokeWidth: DefaultStrokeWidth,
		Color:       White,
		Padding:     0,
		Metric:      MetricEuclidean,
	}
}

// OptionsFromSize scales the stroke with the canvas: about 1% of the side,
// never thinner than DefaultStrokeWidth.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	side := max(size.X, size.Y)
	opt.CanvasSize = side
	opt.StrokeWidth = max(DefaultStrokeWidth, side/100)
	return opt
}

// Validate reports the first invalid field as a *ConfigError.
func (o Options) Validate() error {
	if o.CanvasSize <= 0 {
		return &ConfigError{Field: "canvas size", Value: fmt.Sprint(o.CanvasSize), Reason: "must be positive"}
	}
	return o.validateStroke()
}

// validateStroke checks everything but CanvasSize, which Outline never uses.
func (o Options) validateStroke() error {
	if err := checkThreshold(o.Threshold); err != nil {
		return err
	}
	if err := checkStrokeWidth(o.StrokeWidth); err != nil {
		return err
	}
	if o.Padding < 0 {
		return &ConfigError{Field: "padding", Value: fmt.Sprint(o.Padding), Reason: "must not be negative"}
	}
	switch o.Metric {
	case MetricEuclidean, MetricChamfer, MetricManhattan:
	default:
		return &ConfigError{Field: "metric", Value: fmt.Sprint(int(o.Metric)), Reason: "unknown distance metric"}
	}
	return nil
}

func checkThreshold(t int) error {
	if t < 0 || t > 255 {
		return &ConfigError{Field: "threshold", Value: fmt.Sprint(t), Reason: "must be within 0-255"}
	}
	return nil
}

func checkStrokeWidth(w int) error {
	if w < 1 {
		return &ConfigError{Field: "stroke width", Value: fmt.Sprint(w), Reason: "must be at least 1"}
	}
	return nil
}
