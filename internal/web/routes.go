package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-finder/internal/imaging"
	"github.com/kozaktomas/face-finder/internal/web/handlers"
)

func (s *Server) setupRoutes(processor *imaging.Processor, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler("face-finder", deps.Version, deps.Gateway)
	detectHandler := handlers.NewDetectHandler(s.config, processor, deps.Detector)
	uploadHandler := handlers.NewUploadHandler(s.config, deps.Gateway)

	// Health check at both the service root and under /api for clients
	// that only see the API prefix.
	s.router.Get("/health", healthHandler.Get)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Get)

		// Detection
		r.Post("/detect-faces", detectHandler.Detect)

		// Upload
		r.Post("/upload", uploadHandler.Upload)
		r.Get("/upload/{fileId}", uploadHandler.GetFileInfo)
		r.Delete("/upload/{fileId}", uploadHandler.Delete)
	})
}
