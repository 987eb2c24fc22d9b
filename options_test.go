package stickerstroke

import (
	"errors"
	"image"
	"testing"
)

func TestDefaultOptionsAreValid(t *testing.T) {
	opt := DefaultOptions()
	if err := opt.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if opt.CanvasSize != 300 || opt.StrokeWidth != 3 || opt.Color != White || opt.Threshold != 0 || opt.Padding != 0 {
		t.Errorf("defaults = %+v", opt)
	}
}

func TestOptionsFromSize(t *testing.T) {
	tests := []struct {
		size       image.Point
		canvas     int
		strokeWith int
	}{
		{image.Pt(0, 10), DefaultCanvasSize, DefaultStrokeWidth},
		{image.Pt(120, 80), 120, DefaultStrokeWidth},
		{image.Pt(800, 1200), 1200, 12},
	}
	for _, tc := range tests {
		opt := OptionsFromSize(tc.size)
		if opt.CanvasSize != tc.canvas || opt.StrokeWidth != tc.strokeWith {
			t.Errorf("OptionsFromSize(%v) = canvas %d stroke %d, want %d, %d",
				tc.size, opt.CanvasSize, opt.StrokeWidth, tc.canvas, tc.strokeWith)
		}
	}
}

func TestParseMetric(t *testing.T) {
	for in, want := range map[string]Metric{
		"":          MetricEuclidean,
		"L2":        MetricEuclidean,
		"chamfer":   MetricChamfer,
		"Manhattan": MetricManhattan,
	} {
		got, err := ParseMetric(in)
		if err != nil || got != want {
			t.Errorf("ParseMetric(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMetric("chebyshev"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestConfigErrorMessage(t *testing.T) {
	err := DefaultOptions()
	err.StrokeWidth = 0
	got := err.Validate()
	want := `invalid stroke width "0": must be at least 1`
	if got == nil || got.Error() != want {
		t.Errorf("Validate() = %v, want %q", got, want)
	}
}
