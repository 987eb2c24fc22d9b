// Package stickerstroke draws a uniform colored outline around the opaque
// part of a transparent image, producing sticker-style assets.
package stickerstroke

import (
	"fmt"
	"image"
)

// StickerBuilder runs the stroke pipeline and keeps every intermediate stage
// so callers can inspect or dump them.
type StickerBuilder struct {
	InputImage image.Image
	Fitted     *image.RGBA // after Fit, or the normalized input for outlines
	Padded     *image.RGBA
	Mask       OpacityMask
	Field      DistanceField
	Opacity    StrokeMask
	Output     *image.RGBA
}

func NewStickerBuilder(input image.Image) *StickerBuilder {
	return &StickerBuilder{InputImage: input}
}

// Sticker fits img into the canvas and outlines it.
// The result is (CanvasSize+2*Padding) pixels square.
func Sticker(img image.Image, opt Options) (*image.RGBA, error) {
	sb := NewStickerBuilder(img)
	if err := sb.Build(opt); err != nil {
		return nil, err
	}
	return sb.Output, nil
}

// Outline strokes img at its native size. CanvasSize is ignored.
func Outline(img image.Image, opt Options) (*image.RGBA, error) {
	sb := NewStickerBuilder(img)
	if err := sb.BuildOutline(opt); err != nil {
		return nil, err
	}
	return sb.Output, nil
}

func (sb *StickerBuilder) Build(opt Options) error {
	if err := opt.Validate(); err != nil {
		return err
	}
	fitted, err := Fit(sb.InputImage, opt.CanvasSize)
	if err != nil {
		return err
	}
	sb.Fitted = fitted
	return sb.stroke(opt)
}

func (sb *StickerBuilder) BuildOutline(opt Options) error {
	if err := opt.validateStroke(); err != nil {
		return err
	}
	b := sb.InputImage.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("outline %dx%d: %w", b.Dx(), b.Dy(), ErrEmptyImage)
	}
	sb.Fitted = toRGBA(sb.InputImage)
	return sb.stroke(opt)
}

// Result returns the composited image, or nil before a successful build.
func (sb *StickerBuilder) Result() *image.RGBA {
	return sb.Output
}

// ============ STAGES ============

func (sb *StickerBuilder) stroke(opt Options) error {
	padded, err := Pad(sb.Fitted, opt.Padding)
	if err != nil {
		return err
	}
	sb.Padded = padded

	mask, err := NewOpacityMask(padded, opt.Threshold)
	if err != nil {
		return err
	}
	sb.Mask = mask
	sb.Field = DistanceFromMask(mask, opt.Metric)

	opacity, err := ComputeStrokeOpacity(sb.Field, opt.StrokeWidth)
	if err != nil {
		return err
	}
	sb.Opacity = opacity

	out, err := CompositeStroke(padded, opacity, opt.Color)
	if err != nil {
		return err
	}
	sb.Output = out
	return nil
}

// ============ DEBUG OUTPUT ============

func (sb *StickerBuilder) MaskImage() *image.Gray {
	if sb.Mask.W == 0 {
		return nil
	}
	return sb.Mask.Gray()
}

func (sb *StickerBuilder) DistanceImage() *image.Gray {
	if sb.Field.Width() == 0 {
		return nil
	}
	return sb.Field.Gray()
}

// StrokeLayerImage returns the flat stroke layer in the given color, as it
// sits beneath the image.
func (sb *StickerBuilder) StrokeLayerImage(c Color) *image.NRGBA {
	if sb.Opacity.W == 0 {
		return nil
	}
	return StrokeLayer(sb.Opacity, c)
}
