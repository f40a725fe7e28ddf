package detect

import (
	"context"

	"github.com/kozaktomas/face-finder/internal/constants"
	"github.com/kozaktomas/face-finder/internal/imaging"
)

// StubProvider is a deterministic Provider used in tests and for local
// development without a detector service. It reports either a fixed set
// of detections or a single centered face derived from the image
// dimensions.
type StubProvider struct {
	detections []RawDetection
	fixed      bool
	loadErr    error
	detectErr  error

	// LoadCalls counts Load invocations, for initialization tests.
	LoadCalls int
}

// NewStubProvider creates a stub that derives one centered face at
// confidence 0.9 from the analyzed image.
func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

// NewStubProviderWithDetections creates a stub that always reports the
// given detections, in detector (scaled buffer) coordinates.
func NewStubProviderWithDetections(detections []RawDetection) *StubProvider {
	return &StubProvider{detections: detections, fixed: true}
}

// FailLoad makes Load return err.
func (s *StubProvider) FailLoad(err error) { s.loadErr = err }

// FailDetect makes Detect return err.
func (s *StubProvider) FailDetect(err error) { s.detectErr = err }

func (s *StubProvider) Name() string { return "stub" }

func (s *StubProvider) Load(ctx context.Context) error {
	s.LoadCalls++
	if s.loadErr != nil {
		return s.loadErr
	}
	return ctx.Err()
}

func (s *StubProvider) Detect(ctx context.Context, img *imaging.ProcessedImage, withLandmarks, withDescriptors bool) ([]RawDetection, error) {
	if s.detectErr != nil {
		return nil, s.detectErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detections := s.detections
	if !s.fixed {
		detections = []RawDetection{centeredFace(img.ScaledWidth, img.ScaledHeight)}
	}

	out := make([]RawDetection, len(detections))
	for i, det := range detections {
		out[i] = det
		if withLandmarks && det.Landmarks == nil {
			out[i].Landmarks = stubLandmarks(det.Box)
		}
		if withDescriptors && det.Descriptor == nil {
			out[i].Descriptor = stubDescriptor(det.Confidence)
		}
	}
	return out, nil
}

// centeredFace derives a square face covering half the smaller image
// dimension, centered in the frame.
func centeredFace(width, height int) RawDetection {
	size := float64(min(width, height)) / 2
	return RawDetection{
		Box: BoundingBox{
			X:      (float64(width) - size) / 2,
			Y:      (float64(height) - size) / 2,
			Width:  size,
			Height: size,
		},
		Confidence: 0.9,
	}
}

// stubLandmarks spreads the landmark points deterministically along the
// box diagonal.
func stubLandmarks(box BoundingBox) []Point {
	points := make([]Point, constants.LandmarkPointCount)
	for i := range points {
		frac := float64(i) / float64(constants.LandmarkPointCount-1)
		points[i] = Point{
			X: box.X + frac*box.Width,
			Y: box.Y + frac*box.Height,
		}
	}
	return points
}

// stubDescriptor derives a fixed-length vector from the confidence so
// repeated calls on the same detection agree.
func stubDescriptor(confidence float64) []float64 {
	descriptor := make([]float64, constants.DescriptorLength)
	for i := range descriptor {
		descriptor[i] = confidence * float64(i) / float64(constants.DescriptorLength)
	}
	return descriptor
}
