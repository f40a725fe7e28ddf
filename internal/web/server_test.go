package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-finder/internal/config"
	"github.com/kozaktomas/face-finder/internal/detect"
)

func testServer() *Server {
	cfg := config.Load()
	detector := detect.New(detect.NewStubProvider(), detect.Options{
		MinConfidence: cfg.Detection.MinConfidence,
		MaxFaces:      cfg.Detection.MaxFaces,
	})
	return NewServer(cfg, 8787, "127.0.0.1", Dependencies{
		Detector: detector,
		Version:  "test",
	})
}

func TestServer_Routes(t *testing.T) {
	server := testServer()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/api/health", http.StatusOK},
		{"POST", "/api/detect-faces", http.StatusBadRequest}, // no multipart body
		{"POST", "/api/upload", http.StatusBadRequest},       // no multipart body
		{"GET", "/api/upload/not-a-uuid", http.StatusBadRequest},
		{"GET", "/api/unknown", http.StatusNotFound},
		{"DELETE", "/api/detect-faces", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			recorder := httptest.NewRecorder()

			server.Router().ServeHTTP(recorder, req)

			if recorder.Code != tt.status {
				t.Errorf("expected status %d, got %d\nBody: %s", tt.status, recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	server := testServer()

	req := httptest.NewRequest("OPTIONS", "/api/detect-faces", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	recorder := httptest.NewRecorder()

	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent && recorder.Code != http.StatusOK {
		t.Fatalf("expected preflight to succeed, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allowed origin echoed back, got %q", got)
	}
}
