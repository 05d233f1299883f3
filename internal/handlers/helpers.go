package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jobwatch/jobwatch/internal/apperr"
	"github.com/jobwatch/jobwatch/internal/models"
)

// ErrorResponse is the error envelope returned by every handler.
type ErrorResponse struct {
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError sends an error JSON response in the standard envelope
func respondError(w http.ResponseWriter, r *http.Request, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := ErrorResponse{
		Status:    status,
		Error:     errorType,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondAppError maps a domain error onto the HTTP error envelope.
func respondAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	if appErr == nil {
		respondError(w, r, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
		return
	}

	switch appErr.Kind {
	case apperr.KindValidation:
		respondError(w, r, http.StatusBadRequest, "Bad Request", appErr.Message)
	case apperr.KindNotFound:
		respondError(w, r, http.StatusNotFound, "Not Found", appErr.Message)
	case apperr.KindConflict:
		respondError(w, r, http.StatusConflict, "Conflict", appErr.Message)
	default:
		respondError(w, r, http.StatusInternalServerError, "Internal Server Error", appErr.Message)
	}
}

// decodeJSON decodes a request body into dst, translating the common
// failure modes into client-facing responses. Returns false when a
// response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		if errors.Is(err, models.ErrInvalidDate) {
			respondError(w, r, http.StatusBadRequest, "Bad Request", "Invalid date format. Expected YYYY-MM-DD.")
			return false
		}
		respondError(w, r, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return false
	}
	return true
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter. The second
// return reports whether the parameter was present and valid; a response
// has been written when ok is false.
func parseDateQuery(w http.ResponseWriter, r *http.Request, name string) (*models.Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Bad Request",
			fmt.Sprintf("Invalid %s: expected YYYY-MM-DD", name))
		return nil, false
	}
	return &d, true
}
