package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jobwatch/jobwatch/internal/models"
)

// ChecklistService is the checklist surface the handler needs.
type ChecklistService interface {
	Checklist(ctx context.Context, date models.Date) ([]*models.ChecklistCompany, error)
	SetCompleted(ctx context.Context, date models.Date, companyID uuid.UUID, completed bool) error
	Remove(ctx context.Context, date models.Date, companyID uuid.UUID) (bool, error)
	SubmitDay(ctx context.Context, date models.Date) ([]*models.Company, error)
}

// ChecklistHandler handles daily checklist requests. The zone decides what
// "today" means when GET omits the date parameter; it must match the
// scheduler's zone or manual and scheduled submits would disagree on the day.
type ChecklistHandler struct {
	service ChecklistService
	zone    *time.Location
}

// NewChecklistHandler creates a new checklist handler
func NewChecklistHandler(service ChecklistService, zone *time.Location) *ChecklistHandler {
	return &ChecklistHandler{service: service, zone: zone}
}

// RegisterRoutes registers checklist routes on the given router.
// The router should already carry the /checklist prefix. Mutations carry the
// date in the path; the read defaults to today via an optional query param.
func (h *ChecklistHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.Get).Methods("GET")
	r.HandleFunc("/{date}/submit", h.Submit).Methods("POST")
	r.HandleFunc("/{date}/companies/{companyId}", h.SetCompleted).Methods("PUT")
	r.HandleFunc("/{date}/companies/{companyId}", h.Remove).Methods("DELETE")
}

// SetCompletedRequest toggles a company's completion on the checklist
type SetCompletedRequest struct {
	Completed bool `json:"completed"`
}

// Get returns the checklist for a date, defaulting to today
func (h *ChecklistHandler) Get(w http.ResponseWriter, r *http.Request) {
	parsed, ok := parseDateQuery(w, r, "date")
	if !ok {
		return
	}
	date := models.Today(h.zone)
	if parsed != nil {
		date = *parsed
	}

	companies, err := h.service.Checklist(r.Context(), date)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, companies)
}

// SetCompleted toggles a company's completion flag for a date
func (h *ChecklistHandler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	date, ok := datePathParam(w, r)
	if !ok {
		return
	}
	companyID, ok := companyIDPathParam(w, r)
	if !ok {
		return
	}

	var req SetCompletedRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.SetCompleted(r.Context(), date, companyID, req.Completed); err != nil {
		respondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove deletes a company's checklist entry for a date
func (h *ChecklistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	date, ok := datePathParam(w, r)
	if !ok {
		return
	}
	companyID, ok := companyIDPathParam(w, r)
	if !ok {
		return
	}

	removed, err := h.service.Remove(r.Context(), date, companyID)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	if !removed {
		respondError(w, r, http.StatusNotFound, "Not Found", "Checklist entry not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Submit consumes the date's completed entries and returns the companies
// whose visit history advanced
func (h *ChecklistHandler) Submit(w http.ResponseWriter, r *http.Request) {
	date, ok := datePathParam(w, r)
	if !ok {
		return
	}

	advanced, err := h.service.SubmitDay(r.Context(), date)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, advanced)
}

func datePathParam(w http.ResponseWriter, r *http.Request) (models.Date, bool) {
	date, err := models.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Bad Request", "Invalid date: expected YYYY-MM-DD")
		return models.Date{}, false
	}
	return date, true
}

func companyIDPathParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["companyId"])
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Bad Request", "Invalid company ID")
		return uuid.Nil, false
	}
	return id, true
}
