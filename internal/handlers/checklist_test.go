package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jobwatch/jobwatch/internal/apperr"
	"github.com/jobwatch/jobwatch/internal/models"
)

type fakeChecklistService struct {
	checklist []*models.ChecklistCompany
	advanced  []*models.Company
	removed   bool
	err       error

	lastDate      models.Date
	lastCompanyID uuid.UUID
	lastCompleted bool
}

func (f *fakeChecklistService) Checklist(ctx context.Context, date models.Date) ([]*models.ChecklistCompany, error) {
	f.lastDate = date
	return f.checklist, f.err
}

func (f *fakeChecklistService) SetCompleted(ctx context.Context, date models.Date, companyID uuid.UUID, completed bool) error {
	f.lastDate, f.lastCompanyID, f.lastCompleted = date, companyID, completed
	return f.err
}

func (f *fakeChecklistService) Remove(ctx context.Context, date models.Date, companyID uuid.UUID) (bool, error) {
	f.lastDate, f.lastCompanyID = date, companyID
	return f.removed, f.err
}

func (f *fakeChecklistService) SubmitDay(ctx context.Context, date models.Date) ([]*models.Company, error) {
	f.lastDate = date
	return f.advanced, f.err
}

func newChecklistRouter(service *fakeChecklistService, zone *time.Location) *mux.Router {
	r := mux.NewRouter()
	NewChecklistHandler(service, zone).RegisterRoutes(r.PathPrefix("/api/checklist").Subrouter())
	return r
}

func TestGetChecklist(t *testing.T) {
	t.Parallel()

	t.Run("explicit date", func(t *testing.T) {
		t.Parallel()

		service := &fakeChecklistService{
			checklist: []*models.ChecklistCompany{
				{Company: models.Company{ID: uuid.New(), Name: "Acme"}, Completed: true, InChecklist: true},
			},
		}
		router := newChecklistRouter(service, time.UTC)

		w := doJSON(t, router, "GET", "/api/checklist?date=2026-06-01", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if !service.lastDate.Equal(models.NewDate(2026, time.June, 1)) {
			t.Errorf("Expected service called with 2026-06-01, got %s", service.lastDate)
		}

		var got []map[string]any
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("Expected 1 entry, got %d", len(got))
		}
		if completed, ok := got[0]["completed"].(bool); !ok || !completed {
			t.Error("Expected completed to be true")
		}
		if inChecklist, ok := got[0]["inChecklist"].(bool); !ok || !inChecklist {
			t.Error("Expected inChecklist to be true")
		}
	})

	t.Run("default date is today in zone", func(t *testing.T) {
		t.Parallel()

		service := &fakeChecklistService{checklist: []*models.ChecklistCompany{}}
		router := newChecklistRouter(service, time.UTC)

		w := doJSON(t, router, "GET", "/api/checklist", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if !service.lastDate.Equal(models.Today(time.UTC)) {
			t.Errorf("Expected service called with today, got %s", service.lastDate)
		}
	})

	t.Run("invalid date rejected", func(t *testing.T) {
		t.Parallel()

		router := newChecklistRouter(&fakeChecklistService{}, time.UTC)
		w := doJSON(t, router, "GET", "/api/checklist?date=June-1", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestSetChecklistCompleted(t *testing.T) {
	t.Parallel()

	t.Run("completed", func(t *testing.T) {
		t.Parallel()

		service := &fakeChecklistService{}
		router := newChecklistRouter(service, time.UTC)

		companyID := uuid.New()
		w := doJSON(t, router, "PUT", "/api/checklist/2026-06-01/companies/"+companyID.String(),
			map[string]any{"completed": true})
		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected status 204, got %d: %s", w.Code, w.Body.String())
		}
		if service.lastCompanyID != companyID || !service.lastCompleted {
			t.Errorf("Service called with wrong arguments: %s completed=%v",
				service.lastCompanyID, service.lastCompleted)
		}
	})

	t.Run("uncomplete", func(t *testing.T) {
		t.Parallel()

		service := &fakeChecklistService{}
		router := newChecklistRouter(service, time.UTC)

		w := doJSON(t, router, "PUT", "/api/checklist/2026-06-01/companies/"+uuid.NewString(),
			map[string]any{"completed": false})
		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected status 204, got %d", w.Code)
		}
		if service.lastCompleted {
			t.Error("Expected completed to be false")
		}
	})

	t.Run("unknown company", func(t *testing.T) {
		t.Parallel()

		service := &fakeChecklistService{err: apperr.NotFound("Company not found", uuid.New())}
		router := newChecklistRouter(service, time.UTC)

		w := doJSON(t, router, "PUT", "/api/checklist/2026-06-01/companies/"+uuid.NewString(),
			map[string]any{"completed": true})
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("invalid company id", func(t *testing.T) {
		t.Parallel()

		router := newChecklistRouter(&fakeChecklistService{}, time.UTC)
		w := doJSON(t, router, "PUT", "/api/checklist/2026-06-01/companies/nope", map[string]any{"completed": true})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("invalid date in path", func(t *testing.T) {
		t.Parallel()

		router := newChecklistRouter(&fakeChecklistService{}, time.UTC)
		w := doJSON(t, router, "PUT", "/api/checklist/June-1/companies/"+uuid.NewString(),
			map[string]any{"completed": true})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestRemoveChecklistEntry(t *testing.T) {
	t.Parallel()

	t.Run("removed", func(t *testing.T) {
		t.Parallel()

		router := newChecklistRouter(&fakeChecklistService{removed: true}, time.UTC)
		w := doJSON(t, router, "DELETE", "/api/checklist/2026-06-01/companies/"+uuid.NewString(), nil)
		if w.Code != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d", w.Code)
		}
	})

	t.Run("no entry", func(t *testing.T) {
		t.Parallel()

		router := newChecklistRouter(&fakeChecklistService{removed: false}, time.UTC)
		w := doJSON(t, router, "DELETE", "/api/checklist/2026-06-01/companies/"+uuid.NewString(), nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestSubmitChecklist(t *testing.T) {
	t.Parallel()

	t.Run("returns advanced companies", func(t *testing.T) {
		t.Parallel()

		service := &fakeChecklistService{
			advanced: []*models.Company{{ID: uuid.New(), Name: "Acme"}},
		}
		router := newChecklistRouter(service, time.UTC)

		w := doJSON(t, router, "POST", "/api/checklist/2026-06-01/submit", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if !service.lastDate.Equal(models.NewDate(2026, time.June, 1)) {
			t.Errorf("Expected submit for 2026-06-01, got %s", service.lastDate)
		}

		var got []*models.Company
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(got) != 1 || got[0].Name != "Acme" {
			t.Errorf("Unexpected response: %v", got)
		}
	})

	t.Run("empty day yields empty list", func(t *testing.T) {
		t.Parallel()

		service := &fakeChecklistService{advanced: []*models.Company{}}
		router := newChecklistRouter(service, time.UTC)

		w := doJSON(t, router, "POST", "/api/checklist/2026-06-02/submit", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var got []*models.Company
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Expected empty list, got %v", got)
		}
	})
}
