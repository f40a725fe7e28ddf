package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/face-finder/internal/config"
	"github.com/kozaktomas/face-finder/internal/constants"
	"github.com/kozaktomas/face-finder/internal/storage"
	"github.com/kozaktomas/face-finder/internal/validate"
)

// UploadHandler serves the file upload endpoints.
type UploadHandler struct {
	config  *config.Config
	gateway *storage.Gateway
}

// NewUploadHandler creates a new upload handler. gateway may be nil
// when no object storage is configured; uploads then fail with
// STORAGE_UNAVAILABLE.
func NewUploadHandler(cfg *config.Config, gateway *storage.Gateway) *UploadHandler {
	return &UploadHandler{
		config:  cfg,
		gateway: gateway,
	}
}

// uploadResponse is the success payload for POST /api/upload.
type uploadResponse struct {
	FileID     string `json:"fileId"`
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploadedAt"`
}

// Upload handles POST /api/upload: multipart field "file".
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		respondError(w, http.StatusBadRequest, constants.CodeInvalidContentType, "Content-Type must be multipart/form-data")
		return
	}

	if err := r.ParseMultipartForm(h.config.Image.MaxFileSize); err != nil {
		respondError(w, http.StatusBadRequest, constants.CodeMissingFile, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, constants.CodeMissingFile, "no file provided, include a file in the 'file' field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, constants.CodeMissingFile, "failed to read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	result := validate.ImageFile(validate.File{
		Name:  header.Filename,
		Type:  contentType,
		Size:  header.Size,
		Bytes: data,
	})
	if !result.IsValid {
		respondError(w, http.StatusBadRequest, constants.CodeValidationFailed,
			fmt.Sprintf("file validation failed: %s", strings.Join(result.Errors, ", ")))
		return
	}

	if h.gateway == nil {
		respondError(w, http.StatusInternalServerError, constants.CodeStorageUnavailable, "storage service not available")
		return
	}

	fileID := storage.GenerateFileID()
	key := storage.GenerateStorageKey(fileID, header.Filename, contentType)
	uploadedAt := time.Now().UTC().Format(time.RFC3339)

	upload := h.gateway.UploadFile(r.Context(), key, data, contentType, map[string]string{
		"originalFilename": header.Filename,
		"fileSize":         strconv.FormatInt(header.Size, 10),
		"clientInfo":       r.UserAgent(),
	})
	if !upload.Success {
		log.Printf("upload of %s failed: %s", sanitizeForLog(header.Filename), upload.Error)
		respondError(w, http.StatusInternalServerError, constants.CodeUploadFailed,
			fmt.Sprintf("file upload failed: %s", upload.Error))
		return
	}

	log.Printf("uploaded %s as %s (%d bytes)", sanitizeForLog(header.Filename), key, upload.Size)

	respondJSON(w, http.StatusOK, uploadResponse{
		FileID:     fileID,
		Filename:   header.Filename,
		URL:        upload.URL,
		Size:       upload.Size,
		UploadedAt: uploadedAt,
	})
}

// GetFileInfo handles GET /api/upload/{fileId}. Lookup by id needs the
// database integration, which is an explicit, stable not-implemented
// state rather than an error path.
func (h *UploadHandler) GetFileInfo(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")
	if _, err := uuid.Parse(fileID); err != nil {
		respondError(w, http.StatusBadRequest, constants.CodeInvalidFileID, "invalid file ID format")
		return
	}

	respondError(w, http.StatusNotImplemented, constants.CodeDatabaseRequired,
		"file info lookup requires database integration")
}

// Delete handles DELETE /api/upload/{fileId}; deletion is intentionally
// stubbed until records exist to resolve a fileId to a storage key.
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")
	if _, err := uuid.Parse(fileID); err != nil {
		respondError(w, http.StatusBadRequest, constants.CodeInvalidFileID, "invalid file ID format")
		return
	}

	respondError(w, http.StatusNotImplemented, constants.CodeNotImplemented,
		"file deletion is not implemented")
}
