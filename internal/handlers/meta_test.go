package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/jobwatch/jobwatch/internal/models"
)

func newMetaRouter(store *fakeCompanyStore) *mux.Router {
	r := mux.NewRouter()
	NewMetaHandler(store).RegisterRoutes(r.PathPrefix("/api/meta").Subrouter())
	return r
}

func TestGetMeta(t *testing.T) {
	t.Parallel()

	t.Run("with companies", func(t *testing.T) {
		t.Parallel()

		max := models.NewDate(2026, time.September, 14)
		router := newMetaRouter(&fakeCompanyStore{maxNext: &max})

		w := doJSON(t, router, "GET", "/api/meta/max-next-visit-on", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var resp map[string]any
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if got, ok := resp["maxNextVisitOn"].(string); !ok || got != "2026-09-14" {
			t.Errorf("Expected maxNextVisitOn 2026-09-14, got %v", resp["maxNextVisitOn"])
		}
	})

	t.Run("no companies yields null", func(t *testing.T) {
		t.Parallel()

		router := newMetaRouter(&fakeCompanyStore{})

		w := doJSON(t, router, "GET", "/api/meta/max-next-visit-on", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var resp map[string]any
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp["maxNextVisitOn"] != nil {
			t.Errorf("Expected null maxNextVisitOn, got %v", resp["maxNextVisitOn"])
		}
	})
}
