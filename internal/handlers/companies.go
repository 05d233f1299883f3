package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jobwatch/jobwatch/internal/database"
	"github.com/jobwatch/jobwatch/internal/models"
	"github.com/jobwatch/jobwatch/internal/validation"
)

const (
	// MaxCompanyNameLength is the maximum length for a company name
	MaxCompanyNameLength = 255
	// MaxCareersURLLength is the maximum length for a careers page URL
	MaxCareersURLLength = 2048
	// DefaultPageSize is the default page size for pagination
	DefaultPageSize = 10
	// MaxPageSize is the maximum page size for pagination
	MaxPageSize = 200
	// MaxPageNumber caps the zero-based page index so the offset product
	// stays far from overflow
	MaxPageNumber = 1_000_000
)

// CompanyHandler handles company-related requests
type CompanyHandler struct {
	companies database.CompanyStore
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companies database.CompanyStore) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// RegisterRoutes registers company routes on the given router.
// The router should already carry the /companies prefix. The batch route
// must be registered before the {id} routes so "batch" never parses as an id.
func (h *CompanyHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/batch", h.BatchDelete).Methods("DELETE")
	r.HandleFunc("", h.List).Methods("GET")
	r.HandleFunc("", h.Create).Methods("POST")
	r.HandleFunc("/{id}", h.Get).Methods("GET")
	r.HandleFunc("/{id}", h.Update).Methods("PATCH")
	r.HandleFunc("/{id}", h.Delete).Methods("DELETE")
}

// CreateCompanyRequest represents a create company request
type CreateCompanyRequest struct {
	Name             string       `json:"companyName" validate:"required,min=1,max=255"`
	CareersURL       string       `json:"careersUrl" validate:"required,url,max=2048"`
	LastVisitedOn    *models.Date `json:"lastVisitedOn,omitempty"`
	RevisitAfterDays *int         `json:"revisitAfterDays,omitempty" validate:"omitempty,min=1"`
	Tags             []string     `json:"tags,omitempty"`
}

// UpdateCompanyRequest represents a partial company update. A present
// tags field replaces the full tag set; an absent one leaves it alone.
type UpdateCompanyRequest struct {
	Name             *string      `json:"companyName,omitempty"`
	CareersURL       *string      `json:"careersUrl,omitempty"`
	LastVisitedOn    *models.Date `json:"lastVisitedOn,omitempty"`
	RevisitAfterDays *int         `json:"revisitAfterDays,omitempty"`
	Tags             *[]string    `json:"tags,omitempty"`
}

// ListCompaniesResponse represents the paginated response for listing companies
type ListCompaniesResponse struct {
	Items []*models.Company `json:"items"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
	Total int64             `json:"total"`
}

// BatchDeleteRequest represents a batch delete request
type BatchDeleteRequest struct {
	CompanyIDs []uuid.UUID `json:"companyIds"`
}

// BatchDeleteResponse reports how many of the requested companies were removed
type BatchDeleteResponse struct {
	Deleted   int64 `json:"deleted"`
	Requested int   `json:"requested"`
}

// List lists companies with pagination and optional filters
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse pagination parameters; pages are zero-based
	page := 0
	if p := r.URL.Query().Get("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 0 {
			respondError(w, r, http.StatusBadRequest, "Bad Request", "Invalid page: must be a non-negative integer")
			return
		}
		if parsed > MaxPageNumber {
			respondError(w, r, http.StatusBadRequest, "Bad Request",
				fmt.Sprintf("Invalid page: must not exceed %d", MaxPageNumber))
			return
		}
		page = parsed
	}

	size := DefaultPageSize
	if s := r.URL.Query().Get("size"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			respondError(w, r, http.StatusBadRequest, "Bad Request", "Invalid size: must be a positive integer")
			return
		}
		if parsed > MaxPageSize {
			parsed = MaxPageSize
		}
		size = parsed
	}

	filter := database.CompanyFilter{
		NamePrefix: strings.TrimSpace(r.URL.Query().Get("q")),
	}

	if tags := r.URL.Query().Get("tags"); tags != "" {
		for _, raw := range strings.Split(tags, ",") {
			if key := models.NormalizeTagKey(raw); key != "" {
				filter.TagKeys = append(filter.TagKeys, key)
			}
		}
	}

	if due := r.URL.Query().Get("due"); due != "" {
		if err := validation.ValidateDueFilter(due); err != nil {
			respondError(w, r, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		parsed, _ := models.ParseDueFilter(due)
		filter.Due = parsed
	}

	nextVisitOn, ok := parseDateQuery(w, r, "nextVisitOn")
	if !ok {
		return
	}
	filter.NextVisitOn = nextVisitOn

	lastVisitedOn, ok := parseDateQuery(w, r, "lastVisitedOn")
	if !ok {
		return
	}
	filter.LastVisitedOn = lastVisitedOn

	items, err := h.companies.Find(ctx, filter, page, size)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	total, err := h.companies.Count(ctx, filter)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ListCompaniesResponse{
		Items: items,
		Page:  page,
		Size:  size,
		Total: total,
	})
}

// Create creates a new company
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = validation.SanitizeText(req.Name)
	req.CareersURL = strings.TrimSpace(req.CareersURL)

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondError(w, r, http.StatusBadRequest, "Bad Request",
					fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondError(w, r, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	revisit := models.DefaultRevisitAfterDays
	if req.RevisitAfterDays != nil {
		revisit = *req.RevisitAfterDays
	}

	company, err := h.companies.Insert(r.Context(), database.InsertCompanyParams{
		Name:             req.Name,
		CareersURL:       req.CareersURL,
		LastVisitedOn:    req.LastVisitedOn,
		RevisitAfterDays: revisit,
		TagNames:         sanitizeTagNames(req.Tags),
	})
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, company)
}

// Get retrieves a company by ID
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCompanyID(w, r)
	if !ok {
		return
	}

	company, err := h.companies.GetByID(r.Context(), id)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, company)
}

// Update applies a partial update to a company
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCompanyID(w, r)
	if !ok {
		return
	}

	var req UpdateCompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := database.UpdateCompanyParams{
		LastVisitedOn:    req.LastVisitedOn,
		RevisitAfterDays: req.RevisitAfterDays,
	}

	if req.Name != nil {
		sanitized := validation.SanitizeText(*req.Name)
		if sanitized == "" {
			respondError(w, r, http.StatusBadRequest, "Bad Request", "Company name cannot be empty")
			return
		}
		if len(sanitized) > MaxCompanyNameLength {
			respondError(w, r, http.StatusBadRequest, "Bad Request",
				fmt.Sprintf("Company name exceeds maximum length of %d characters", MaxCompanyNameLength))
			return
		}
		params.Name = &sanitized
	}
	if req.CareersURL != nil {
		trimmed := strings.TrimSpace(*req.CareersURL)
		if trimmed == "" || len(trimmed) > MaxCareersURLLength {
			respondError(w, r, http.StatusBadRequest, "Bad Request", "Invalid careers URL")
			return
		}
		params.CareersURL = &trimmed
	}
	if req.RevisitAfterDays != nil && *req.RevisitAfterDays < models.MinRevisitAfterDays {
		respondError(w, r, http.StatusBadRequest, "Bad Request",
			fmt.Sprintf("revisitAfterDays must be at least %d", models.MinRevisitAfterDays))
		return
	}
	if req.Tags != nil {
		sanitized := sanitizeTagNames(*req.Tags)
		params.TagNames = &sanitized
	}

	company, err := h.companies.Update(r.Context(), id, params)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, company)
}

// Delete deletes a company
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCompanyID(w, r)
	if !ok {
		return
	}

	deleted, err := h.companies.Delete(r.Context(), id)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	if !deleted {
		respondError(w, r, http.StatusNotFound, "Not Found", "Company not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BatchDelete deletes a set of companies in one call
func (h *CompanyHandler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.CompanyIDs) == 0 {
		respondError(w, r, http.StatusBadRequest, "Bad Request", "No company IDs provided")
		return
	}

	deleted, err := h.companies.DeleteBatch(r.Context(), req.CompanyIDs)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, BatchDeleteResponse{
		Deleted:   deleted,
		Requested: len(req.CompanyIDs),
	})
}

// parseCompanyID extracts the {id} route variable. A response has been
// written when ok is false.
func parseCompanyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Bad Request", "Invalid company ID")
		return uuid.Nil, false
	}
	return id, true
}

// sanitizeTagNames trims control characters and drops blank entries.
// Deduplication is left to the store, which keys on normalized tag keys.
func sanitizeTagNames(names []string) []string {
	sanitized := make([]string, 0, len(names))
	for _, name := range names {
		if clean := validation.SanitizeText(name); clean != "" {
			sanitized = append(sanitized, clean)
		}
	}
	return sanitized
}
