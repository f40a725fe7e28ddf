package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/face-finder/internal/constants"
	"github.com/kozaktomas/face-finder/internal/imaging"
)

// RemoteProvider is a Provider backed by an external face detector
// service speaking the detect-faces multipart protocol.
type RemoteProvider struct {
	baseURL string
	client  *http.Client
}

// NewRemoteProvider creates a provider talking to the detector service
// at baseURL.
func NewRemoteProvider(baseURL string) *RemoteProvider {
	return &RemoteProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

func (r *RemoteProvider) Name() string { return "remote" }

// Load verifies the detector service is reachable and healthy. Model
// loading itself happens inside the service on its first request.
func (r *RemoteProvider) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("detector service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// remoteFace mirrors the detector service's JSON face shape.
type remoteFace struct {
	BoundingBox BoundingBox `json:"boundingBox"`
	Confidence  float64     `json:"confidence"`
	Landmarks   []Point     `json:"landmarks,omitempty"`
	Descriptor  []float64   `json:"descriptor,omitempty"`
}

type remoteResponse struct {
	Success bool         `json:"success"`
	Faces   []remoteFace `json:"faces"`
	Error   *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Detect posts the preprocessed buffer to the detector service and maps
// its faces back to raw detections. Filtering and truncation stay with
// the orchestrator, so the service is asked for everything it can see.
func (r *RemoteProvider) Detect(ctx context.Context, img *imaging.ProcessedImage, withLandmarks, withDescriptors bool) ([]RawDetection, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("could not create form file: %w", err)
	}
	if _, err := part.Write(img.Bytes); err != nil {
		return nil, fmt.Errorf("could not write image data: %w", err)
	}

	fields := map[string]string{
		"minConfidence":     "0",
		"maxFaces":          strconv.Itoa(constants.MaxFacesLimit),
		"enableLandmarks":   strconv.FormatBool(withLandmarks),
		"enableDescriptors": strconv.FormatBool(withDescriptors),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("could not write form field %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("could not finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/detect-faces", &body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed remoteResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	if !parsed.Success {
		msg := "unknown error"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, fmt.Errorf("detector service error: %s", msg)
	}

	detections := make([]RawDetection, len(parsed.Faces))
	for i, face := range parsed.Faces {
		detections[i] = RawDetection{
			Box:        face.BoundingBox,
			Confidence: face.Confidence,
			Landmarks:  face.Landmarks,
			Descriptor: face.Descriptor,
		}
	}
	return detections, nil
}
