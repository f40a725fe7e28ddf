// Package imaging decodes uploaded images and prepares them for face
// detection: fit within a maximum dimension, re-encode as JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when the input bytes cannot be decoded as an image.
var ErrDecode = errors.New("failed to decode image")

// ErrMissingDimensions is returned when the decoded image has no usable dimensions.
var ErrMissingDimensions = errors.New("invalid image: missing dimensions")

// ProcessedImage is the result of preprocessing. Width and Height are the
// ORIGINAL decoded dimensions; the detector runs on the re-encoded buffer
// whose dimensions are ScaledWidth and ScaledHeight. Detection coordinates
// must be rescaled by original/scaled before they are reported.
type ProcessedImage struct {
	Bytes        []byte
	Width        int
	Height       int
	ScaledWidth  int
	ScaledHeight int
	Format       string
}

// Processor preprocesses images for detection.
type Processor struct {
	maxDimension int
	jpegQuality  int
}

// NewProcessor creates a processor with the given maximum dimension and
// JPEG re-encode quality.
func NewProcessor(maxDimension, jpegQuality int) *Processor {
	return &Processor{
		maxDimension: maxDimension,
		jpegQuality:  jpegQuality,
	}
}

// Preprocess decodes the image, resizes it to fit within the maximum
// dimension while keeping aspect ratio (never upscaling), and re-encodes
// it as JPEG at the configured quality.
func (p *Processor) Preprocess(data []byte) (*ProcessedImage, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, ErrMissingDimensions
	}

	scaledWidth, scaledHeight := fitWithin(width, height, p.maxDimension)

	out := img
	if scaledWidth != width || scaledHeight != height {
		resized := image.NewRGBA(image.Rect(0, 0, scaledWidth, scaledHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		out = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: p.jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &ProcessedImage{
		Bytes:        buf.Bytes(),
		Width:        width,
		Height:       height,
		ScaledWidth:  scaledWidth,
		ScaledHeight: scaledHeight,
		Format:       "jpeg",
	}, nil
}

// fitWithin computes dimensions that fit within maxSize while keeping the
// aspect ratio. Images already within the limit keep their dimensions.
// The short side never rounds below 1 pixel, so extreme aspect ratios
// cannot produce a zero dimension.
func fitWithin(width, height, maxSize int) (int, int) {
	if width <= maxSize && height <= maxSize {
		return width, height
	}
	if width > height {
		return maxSize, max(1, int(float64(height)*float64(maxSize)/float64(width)))
	}
	return max(1, int(float64(width)*float64(maxSize)/float64(height))), maxSize
}
