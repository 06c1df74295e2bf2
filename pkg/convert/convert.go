// Package convert turns captured BGRA frames into planar YUV 4:2:0 images
// suitable for an H.264 encoder.
package convert

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/user/screenrec/pkg/pipeline"
)

var (
	// ErrOddDimensions is returned when a target dimension is odd; 4:2:0
	// chroma subsampling needs whole 2x2 blocks.
	ErrOddDimensions = errors.New("convert: dimensions must be even")

	// ErrInvalidSize is returned for non-positive target dimensions.
	ErrInvalidSize = errors.New("convert: invalid target size")
)

// Converter converts BGRA frames to YCbCr 4:2:0 using BT.601 limited-range
// coefficients, resampling with Kernel when the target size differs.
// A Converter holds no per-call state and may be shared between goroutines.
type Converter struct {
	Kernel draw.Interpolator
}

// New returns a converter with bilinear resampling.
func New() *Converter {
	return &Converter{Kernel: draw.BiLinear}
}

// Convert validates the frame and converts it to a dstW x dstH YCbCr image.
func (c *Converter) Convert(frame pipeline.Frame, dstW, dstH int) (*image.YCbCr, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	if dstW <= 0 || dstH <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, dstW, dstH)
	}
	if dstW%2 != 0 || dstH%2 != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrOddDimensions, dstW, dstH)
	}

	dst := image.NewYCbCr(image.Rect(0, 0, dstW, dstH), image.YCbCrSubsampleRatio420)

	srcW, srcH := int(frame.Width), int(frame.Height)
	if srcW == dstW && srcH == dstH {
		toYCbCr(dst, frame.Raw, srcW*pipeline.BytesPerPixel, bgraLayout)
		return dst, nil
	}

	scaled := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	kernel := c.Kernel
	if kernel == nil {
		kernel = draw.BiLinear
	}
	kernel.Scale(scaled, scaled.Bounds(), ToRGBA(frame), image.Rect(0, 0, srcW, srcH), draw.Src, nil)

	toYCbCr(dst, scaled.Pix, scaled.Stride, rgbaLayout)
	return dst, nil
}

// ToRGBA copies a BGRA frame into an RGBA image. The frame must be valid.
func ToRGBA(frame pipeline.Frame) *image.RGBA {
	w, h := int(frame.Width), int(frame.Height)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	src, dst := frame.Raw, img.Pix
	for i := 0; i+3 < len(src) && i+3 < len(dst); i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = 255
	}
	return img
}
