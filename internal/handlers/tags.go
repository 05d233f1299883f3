package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jobwatch/jobwatch/internal/database"
)

// TagHandler handles tag-related requests
type TagHandler struct {
	tags database.TagStore
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tags database.TagStore) *TagHandler {
	return &TagHandler{tags: tags}
}

// RegisterRoutes registers tag routes on the given router.
// The router should already carry the /tags prefix.
func (h *TagHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.List).Methods("GET")
}

// List returns every known tag ordered by display name
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.ListAll(r.Context())
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tags)
}
