package detect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteProvider_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer server.Close()

	provider := NewRemoteProvider(server.URL)
	assert.NoError(t, provider.Load(context.Background()))
}

func TestRemoteProvider_LoadUnhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := NewRemoteProvider(server.URL)
	assert.Error(t, provider.Load(context.Background()))
}

func TestRemoteProvider_Detect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/detect-faces", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		require.NoError(t, r.ParseMultipartForm(32<<20))

		// The orchestrator owns filtering, so the service is asked for
		// everything it can see.
		assert.Equal(t, "0", r.FormValue("minConfidence"))
		assert.Equal(t, "50", r.FormValue("maxFaces"))
		assert.Equal(t, "true", r.FormValue("enableLandmarks"))
		assert.Equal(t, "false", r.FormValue("enableDescriptors"))

		file, _, err := r.FormFile("image")
		require.NoError(t, err)
		file.Close()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"faces": []map[string]any{
				{
					"boundingBox": map[string]float64{"x": 10, "y": 20, "width": 30, "height": 40},
					"confidence":  0.87,
					"landmarks":   []map[string]float64{{"x": 1, "y": 2}},
				},
			},
			"processingTime": 42,
			"imageInfo":      map[string]int{"width": 640, "height": 480},
		})
	}))
	defer server.Close()

	provider := NewRemoteProvider(server.URL)
	detections, err := provider.Detect(context.Background(), unscaledImage(640, 480), true, false)
	require.NoError(t, err)

	require.Len(t, detections, 1)
	assert.Equal(t, BoundingBox{X: 10, Y: 20, Width: 30, Height: 40}, detections[0].Box)
	assert.Equal(t, 0.87, detections[0].Confidence)
	require.Len(t, detections[0].Landmarks, 1)
	assert.Equal(t, Point{X: 1, Y: 2}, detections[0].Landmarks[0])
}

func TestRemoteProvider_DetectServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]string{"message": "detection failed", "code": "DETECTION_ERROR"},
		})
	}))
	defer server.Close()

	provider := NewRemoteProvider(server.URL)
	_, err := provider.Detect(context.Background(), unscaledImage(640, 480), false, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestRemoteProvider_DetectUnreachable(t *testing.T) {
	provider := NewRemoteProvider("http://127.0.0.1:1")

	_, err := provider.Detect(context.Background(), unscaledImage(640, 480), false, false)
	assert.Error(t, err)
}

func TestRemoteProvider_DetectThroughOrchestrator(t *testing.T) {
	// End to end through the detector: the orchestrator filters and
	// orders what the remote service reports.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"faces": []map[string]any{
				{"boundingBox": map[string]float64{"x": 0, "y": 0, "width": 10, "height": 10}, "confidence": 0.4},
				{"boundingBox": map[string]float64{"x": 20, "y": 0, "width": 10, "height": 10}, "confidence": 0.95},
				{"boundingBox": map[string]float64{"x": 40, "y": 0, "width": 10, "height": 10}, "confidence": 0.6},
			},
		})
	}))
	defer server.Close()

	detector := New(NewRemoteProvider(server.URL), DefaultOptions())
	result, err := detector.Detect(context.Background(), unscaledImage(640, 480), Options{MinConfidence: 0.5, MaxFaces: 10})
	require.NoError(t, err)

	require.Len(t, result.Faces, 2)
	assert.Equal(t, 0.95, result.Faces[0].Confidence)
	assert.Equal(t, 0.6, result.Faces[1].Confidence)
}
