package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/kozaktomas/face-finder/internal/config"
	"github.com/kozaktomas/face-finder/internal/constants"
	"github.com/kozaktomas/face-finder/internal/detect"
	"github.com/kozaktomas/face-finder/internal/imaging"
)

// DetectHandler serves the face detection endpoint.
type DetectHandler struct {
	config    *config.Config
	processor *imaging.Processor
	detector  *detect.Detector
}

// NewDetectHandler creates a new detection handler.
func NewDetectHandler(cfg *config.Config, processor *imaging.Processor, detector *detect.Detector) *DetectHandler {
	return &DetectHandler{
		config:    cfg,
		processor: processor,
		detector:  detector,
	}
}

// detectResponse embeds the detection result under the success flag.
type detectResponse struct {
	Success bool `json:"success"`
	*detect.Result
}

// Detect handles POST /api/detect-faces: multipart field "image" plus
// optional string options minConfidence, maxFaces, enableLandmarks and
// enableDescriptors.
func (h *DetectHandler) Detect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.config.Image.MaxFileSize); err != nil {
		respondError(w, http.StatusBadRequest, constants.CodeMissingFile, "no image file provided")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, constants.CodeMissingFile, "no image file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(w, http.StatusBadRequest, constants.CodeInvalidFileType, "invalid file type, only images are allowed")
		return
	}

	if header.Size > h.config.Image.MaxFileSize {
		respondError(w, http.StatusBadRequest, constants.CodeFileTooLarge, "file too large, maximum size is 10MB")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, constants.CodeMissingFile, "failed to read image file")
		return
	}

	opts, ok := h.parseOptions(w, r)
	if !ok {
		return
	}

	log.Printf("detecting faces in %s (%d bytes, type %s)",
		sanitizeForLog(header.Filename), header.Size, sanitizeForLog(contentType))

	ctx, cancel := context.WithTimeout(r.Context(), h.config.Detection.Timeout)
	defer cancel()

	processed, err := h.processor.Preprocess(data)
	if err != nil {
		log.Printf("preprocessing failed: %v", err)
		respondError(w, http.StatusInternalServerError, constants.CodeDetectionError, "face detection failed")
		return
	}

	result, err := h.detector.Detect(ctx, processed, opts)
	if err != nil {
		log.Printf("detection failed: %v", err)
		respondError(w, http.StatusInternalServerError, constants.CodeDetectionError, "face detection failed")
		return
	}

	respondJSON(w, http.StatusOK, detectResponse{Success: true, Result: result})
}

// parseOptions reads the optional form fields, applying configured
// defaults for absent fields and rejecting out-of-range values. Returns
// ok=false after writing the error response.
func (h *DetectHandler) parseOptions(w http.ResponseWriter, r *http.Request) (detect.Options, bool) {
	opts := detect.Options{
		MinConfidence:     h.config.Detection.MinConfidence,
		MaxFaces:          h.config.Detection.MaxFaces,
		EnableLandmarks:   h.config.Detection.EnableLandmarks,
		EnableDescriptors: h.config.Detection.EnableDescriptors,
	}

	if v := r.FormValue("minConfidence"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			respondError(w, http.StatusBadRequest, constants.CodeInvalidParams, "minConfidence must be a number between 0 and 1")
			return opts, false
		}
		opts.MinConfidence = f
	}

	if v := r.FormValue("maxFaces"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > constants.MaxFacesLimit {
			respondError(w, http.StatusBadRequest, constants.CodeInvalidParams, "maxFaces must be an integer between 1 and 50")
			return opts, false
		}
		opts.MaxFaces = n
	}

	if v := r.FormValue("enableLandmarks"); v != "" {
		opts.EnableLandmarks = v == "true"
	}
	if v := r.FormValue("enableDescriptors"); v != "" {
		opts.EnableDescriptors = v == "true"
	}

	return opts, true
}
