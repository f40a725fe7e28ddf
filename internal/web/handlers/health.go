package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/kozaktomas/face-finder/internal/storage"
)

// HealthHandler reports service health, including a fail-soft storage
// connectivity probe when a gateway is configured.
type HealthHandler struct {
	service   string
	version   string
	gateway   *storage.Gateway
	startTime time.Time
}

// NewHealthHandler creates a health handler. gateway may be nil when no
// object storage is configured.
func NewHealthHandler(service, version string, gateway *storage.Gateway) *HealthHandler {
	return &HealthHandler{
		service:   service,
		version:   version,
		gateway:   gateway,
		startTime: time.Now(),
	}
}

type healthResponse struct {
	Status      string  `json:"status"`
	Service     string  `json:"service"`
	Version     string  `json:"version"`
	Environment string  `json:"environment"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
}

// Get handles the health check endpoint.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if h.gateway != nil && !h.gateway.CheckConnection(r.Context()) {
		status = "unhealthy"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	respondJSON(w, code, healthResponse{
		Status:      status,
		Service:     h.service,
		Version:     h.version,
		Environment: environment,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Uptime:      time.Since(h.startTime).Seconds(),
	})
}
