package detect

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/face-finder/internal/constants"
	"github.com/kozaktomas/face-finder/internal/imaging"
)

// ErrProvider wraps failures of the underlying detection provider.
var ErrProvider = errors.New("face detection failed")

// Options configures one detection call.
type Options struct {
	MinConfidence     float64
	MaxFaces          int
	EnableLandmarks   bool
	EnableDescriptors bool
}

// DefaultOptions returns the built-in option defaults.
func DefaultOptions() Options {
	return Options{
		MinConfidence: constants.DefaultMinConfidence,
		MaxFaces:      constants.DefaultMaxFaces,
	}
}

// normalize clamps the options into their valid ranges, falling back to
// defaults for unset values. MinConfidence is kept in [0,1] and
// MaxFaces in [1,50].
func (o Options) normalize(defaults Options) Options {
	out := o

	if out.MinConfidence < 0 {
		out.MinConfidence = defaults.MinConfidence
	}
	if out.MinConfidence > 1 {
		out.MinConfidence = 1
	}

	if out.MaxFaces <= 0 {
		out.MaxFaces = defaults.MaxFaces
	}
	if out.MaxFaces > constants.MaxFacesLimit {
		out.MaxFaces = constants.MaxFacesLimit
	}

	return out
}

// Face is one detection result. BoundingBox coordinates are in the
// ORIGINAL image's pixel space. Landmarks and Descriptor are absent
// from the JSON encoding unless they were requested.
type Face struct {
	BoundingBox BoundingBox `json:"boundingBox"`
	Confidence  float64     `json:"confidence"`
	Landmarks   []Point     `json:"landmarks,omitempty"`
	Descriptor  []float64   `json:"descriptor,omitempty"`
}

// ImageInfo reports the dimensions of the analyzed image in the same
// coordinate space as the bounding boxes (original pixels).
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Result is the response envelope for one detection call.
type Result struct {
	Faces          []Face    `json:"faces"`
	ProcessingTime int64     `json:"processingTime"`
	ImageInfo      ImageInfo `json:"imageInfo"`
}

// Detector applies detection policy on top of a Provider: option
// defaults, confidence filtering, ordering, truncation, and the rescale
// from detector space to original image coordinates.
type Detector struct {
	provider Provider
	defaults Options

	loadOnce sync.Once
	loadErr  error
}

// New creates a detector over the given provider. defaults supplies the
// option values used when a request leaves them unset.
func New(provider Provider, defaults Options) *Detector {
	return &Detector{
		provider: provider,
		defaults: defaults,
	}
}

// ensureLoaded initializes the provider exactly once per detector
// lifetime. Concurrent first callers wait on the same load.
func (d *Detector) ensureLoaded(ctx context.Context) error {
	d.loadOnce.Do(func() {
		log.Printf("loading detection provider %q", d.provider.Name())
		d.loadErr = d.provider.Load(ctx)
		if d.loadErr == nil {
			log.Printf("detection provider %q ready", d.provider.Name())
		}
	})
	return d.loadErr
}

// Detect runs face detection on a preprocessed image. The sequence is
// fixed: load, invoke, filter by confidence, sort descending by
// confidence (stable), truncate to MaxFaces, shape. Zero detections is
// a valid result, not an error.
func (d *Detector) Detect(ctx context.Context, img *imaging.ProcessedImage, opts Options) (*Result, error) {
	start := time.Now()
	opts = opts.normalize(d.defaults)

	if err := d.ensureLoaded(ctx); err != nil {
		return nil, fmt.Errorf("%w: loading provider: %v", ErrProvider, err)
	}

	raw, err := d.provider.Detect(ctx, img, opts.EnableLandmarks, opts.EnableDescriptors)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	kept := make([]RawDetection, 0, len(raw))
	for _, det := range raw {
		if det.Confidence >= opts.MinConfidence {
			kept = append(kept, det)
		}
	}

	// Ties keep the provider's original order.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Confidence > kept[j].Confidence
	})

	if len(kept) > opts.MaxFaces {
		kept = kept[:opts.MaxFaces]
	}

	// The provider analyzed the scaled buffer; report everything in
	// original image pixels.
	scaleX := float64(img.Width) / float64(img.ScaledWidth)
	scaleY := float64(img.Height) / float64(img.ScaledHeight)

	faces := make([]Face, 0, len(kept))
	for _, det := range kept {
		face := Face{
			BoundingBox: rescaleBox(det.Box, scaleX, scaleY, img.Width, img.Height),
			Confidence:  det.Confidence,
		}
		if opts.EnableLandmarks && det.Landmarks != nil {
			face.Landmarks = rescalePoints(det.Landmarks, scaleX, scaleY)
		}
		if opts.EnableDescriptors && det.Descriptor != nil {
			face.Descriptor = det.Descriptor
		}
		faces = append(faces, face)
	}

	return &Result{
		Faces:          faces,
		ProcessingTime: time.Since(start).Milliseconds(),
		ImageInfo:      ImageInfo{Width: img.Width, Height: img.Height},
	}, nil
}

// rescaleBox maps a box from detector space into original image pixels
// and clamps it inside the image bounds.
func rescaleBox(box BoundingBox, scaleX, scaleY float64, width, height int) BoundingBox {
	out := BoundingBox{
		X:      box.X * scaleX,
		Y:      box.Y * scaleY,
		Width:  box.Width * scaleX,
		Height: box.Height * scaleY,
	}

	if out.X < 0 {
		out.X = 0
	}
	if out.Y < 0 {
		out.Y = 0
	}
	if out.X+out.Width > float64(width) {
		out.Width = float64(width) - out.X
	}
	if out.Y+out.Height > float64(height) {
		out.Height = float64(height) - out.Y
	}
	return out
}

func rescalePoints(points []Point, scaleX, scaleY float64) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{X: p.X * scaleX, Y: p.Y * scaleY}
	}
	return out
}
