package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		// Known exact routes.
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/metrics", "/metrics"},
		{"/", "/"},
		{"/api/v1/flights", "/api/v1/flights"},
		{"/api/v1/tracks", "/api/v1/tracks"},
		{"/api/v1/timeline", "/api/v1/timeline"},
		{"/api/v1/stream/frames", "/api/v1/stream/frames"},
		{"/api/v1/admin/reload", "/api/v1/admin/reload"},

		// Parameterized routes collapse to one label each.
		{"/api/v1/tracks/f001", "/api/v1/tracks/{id}"},
		{"/api/v1/tracks/f042", "/api/v1/tracks/{id}"},
		{"/api/v1/frames/0", "/api/v1/frames/{index}"},
		{"/api/v1/frames/199", "/api/v1/frames/{index}"},

		// Embedded client assets share one label.
		{"/app.js", "static"},
		{"/style.css", "static"},
		{"/favicon.ico", "static"},

		// Unknown/bot paths collapse to "other".
		{"/wp-admin", "other"},
		{"/robots.txt", "other"},
		{"/.env", "other"},
		{"/api/v2/something", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := normalizeRoute(tt.path)
			if got != tt.want {
				t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// TestMetricsCardinality verifies that hammering parameterized routes with
// distinct IDs produces exactly one distinct label per pattern, not one per ID.
func TestMetricsCardinality(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[normalizeRoute(fmt.Sprintf("/api/v1/tracks/f%03d", i))] = true
		seen[normalizeRoute(fmt.Sprintf("/api/v1/frames/%d", i))] = true
	}
	if len(seen) != 2 {
		t.Errorf("expected 2 unique labels for parameterized paths, got %d: %v", len(seen), seen)
	}
}

func TestMiddleware_PreservesResponse(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "no such track")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tracks/f999", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
	if rec.Body.String() != "no such track" {
		t.Errorf("middleware altered response body: %q", rec.Body.String())
	}
}

func TestMiddleware_DefaultStatusOK(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
