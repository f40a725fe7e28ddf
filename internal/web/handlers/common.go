package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// errorBody is the error payload shape: {"error": {"message", "code"}}.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// respondJSON sends a JSON response. The status line is already written
// when encoding runs, so an encode failure can only be logged.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// respondError sends a structured error response with a stable
// machine-readable code. Internal causes are logged by callers, never
// included here.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]errorBody{
		"error": {Message: message, Code: code},
	})
}
