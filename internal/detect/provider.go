// Package detect orchestrates face detection: it normalizes options,
// invokes a detection provider, and filters, orders and shapes the
// results into the API contract.
package detect

import (
	"context"

	"github.com/kozaktomas/face-finder/internal/imaging"
)

// Point is one landmark coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox locates a face in image pixel coordinates.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RawDetection is one face as reported by a provider, in the coordinate
// space of the buffer the provider analyzed.
type RawDetection struct {
	Box        BoundingBox
	Confidence float64
	Landmarks  []Point
	Descriptor []float64
}

// Provider is the face detection capability consumed by the
// orchestrator. Load is idempotent; implementations must tolerate
// concurrent callers after a successful load, since loaded model state
// is shared and read-only. Detect analyzes the preprocessed buffer and
// reports detections in that buffer's coordinate space.
type Provider interface {
	Name() string
	Load(ctx context.Context) error
	Detect(ctx context.Context, img *imaging.ProcessedImage, withLandmarks, withDescriptors bool) ([]RawDetection, error)
}
