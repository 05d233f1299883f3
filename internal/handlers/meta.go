package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jobwatch/jobwatch/internal/database"
	"github.com/jobwatch/jobwatch/internal/models"
)

// MetaHandler serves aggregate facts about the tracked companies
type MetaHandler struct {
	companies database.CompanyStore
}

// NewMetaHandler creates a new meta handler
func NewMetaHandler(companies database.CompanyStore) *MetaHandler {
	return &MetaHandler{companies: companies}
}

// RegisterRoutes registers meta routes on the given router.
// The router should already carry the /meta prefix.
func (h *MetaHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/max-next-visit-on", h.Get).Methods("GET")
}

// MetaResponse represents the meta endpoint response. MaxNextVisitOn is
// null when no companies exist.
type MetaResponse struct {
	MaxNextVisitOn *models.Date `json:"maxNextVisitOn"`
}

// Get returns the latest next-visit date across all companies
func (h *MetaHandler) Get(w http.ResponseWriter, r *http.Request) {
	max, err := h.companies.MaxNextVisitOn(r.Context())
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, MetaResponse{MaxNextVisitOn: max})
}
