package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{
			name:       "GET needs no content type",
			method:     "GET",
			wantStatus: http.StatusOK,
		},
		{
			name:        "POST with JSON",
			method:      "POST",
			contentType: "application/json",
			wantStatus:  http.StatusOK,
		},
		{
			name:        "POST with JSON and charset",
			method:      "POST",
			contentType: "application/json; charset=utf-8",
			wantStatus:  http.StatusOK,
		},
		{
			name:       "POST without content type",
			method:     "POST",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:        "PATCH with wrong content type",
			method:      "PATCH",
			contentType: "text/plain",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
		{
			name:        "PUT with wrong content type",
			method:      "PUT",
			contentType: "application/xml",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/api/companies", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()

			ContentType(okHandler()).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	t.Parallel()

	t.Run("small body passes", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("POST", "/api/companies", strings.NewReader("{}"))
		w := httptest.NewRecorder()

		MaxRequestSize(64)(okHandler()).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("declared oversize rejected early", func(t *testing.T) {
		t.Parallel()

		body := strings.Repeat("x", 128)
		req := httptest.NewRequest("POST", "/api/companies", strings.NewReader(body))
		w := httptest.NewRecorder()

		MaxRequestSize(64)(okHandler()).ServeHTTP(w, req)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("Expected status 413, got %d", w.Code)
		}
	})
}

func TestRecover(t *testing.T) {
	t.Parallel()

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest("GET", "/api/companies", nil)
	w := httptest.NewRecorder()

	Recover(zap.NewNop())(panicking).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != http.StatusInternalServerError {
		t.Errorf("Expected envelope status 500, got %d", resp.Status)
	}
	if strings.Contains(resp.Message, "boom") {
		t.Error("Expected panic detail to stay out of the response")
	}
	if resp.Path != "/api/companies" {
		t.Errorf("Expected path in envelope, got %q", resp.Path)
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/api/companies", nil)
	w := httptest.NewRecorder()

	SecurityHeaders(false)(okHandler()).ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("Expected nosniff, got %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("Expected DENY, got %q", got)
	}
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("Expected no HSTS on plain HTTP, got %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("invalid rate format", func(t *testing.T) {
		t.Parallel()

		if _, err := RateLimit("not-a-rate", zap.NewNop()); err == nil {
			t.Error("Expected an error for an invalid rate string")
		}
	})

	t.Run("allows within the limit then blocks", func(t *testing.T) {
		t.Parallel()

		mw, err := RateLimit("2-H", zap.NewNop())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		handler := mw(okHandler())

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest("GET", "/api/companies", nil)
			req.RemoteAddr = "203.0.113.7:1234"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("Request %d: expected status 200, got %d", i+1, w.Code)
			}
		}

		req := httptest.NewRequest("GET", "/api/companies", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusTooManyRequests {
			t.Errorf("Expected status 429 after the limit, got %d", w.Code)
		}
	})
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "203.0.113.7:1234",
			want:       "203.0.113.7",
		},
		{
			name:       "x-forwarded-for wins",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.9, 10.0.0.1"},
			want:       "198.51.100.9",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9"},
			want:       "198.51.100.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := clientIP(req); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
