package flights

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const tinyList = `[{"source": {"lat": 1, "lng": 2, "city": "A"},
                    "target": {"lat": 3, "lng": 4, "city": "B"},
                    "date": "2024-01-01", "vehicle": "plane"}]`

// TestFetcherLocalFile verifies fetching from a filesystem path.
func TestFetcherLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flights.json")
	if err := os.WriteFile(path, []byte(tinyList), 0644); err != nil {
		t.Fatal(err)
	}

	fetcher := NewFetcher(path, nil, testLogger)
	data, _, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != tinyList {
		t.Errorf("got %d bytes, want %d", len(data), len(tinyList))
	}
}

// TestFetcherHTTPSuccess verifies a plain 200 fetch.
func TestFetcherHTTPSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tinyList))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, nil, testLogger)
	data, _, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != tinyList {
		t.Errorf("body mismatch: got %d bytes, want %d", len(data), len(tinyList))
	}
}

// TestFetcherNotModified verifies a 304 reply serves the disk-cached copy.
func TestFetcherNotModified(t *testing.T) {
	const etag = `"v1"`
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		w.Write([]byte(tinyList))
	}))
	defer server.Close()

	cache := NewCache(t.TempDir(), 3)
	fetcher := NewFetcher(server.URL, cache, testLogger)

	first, _, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	second, _, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if string(second) != string(first) {
		t.Error("304 fetch returned different bytes than the cached copy")
	}
	if hits != 2 {
		t.Errorf("server hits = %d, want 2", hits)
	}
}

// TestFetcherFallbackToCache verifies a failing source serves the last good
// snapshot instead of erroring.
func TestFetcherFallbackToCache(t *testing.T) {
	var failing bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(tinyList))
	}))
	defer server.Close()

	cache := NewCache(t.TempDir(), 3)
	fetcher := NewFetcher(server.URL, cache, testLogger)

	if _, _, err := fetcher.Fetch(context.Background()); err != nil {
		t.Fatalf("priming fetch: %v", err)
	}

	failing = true
	data, _, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fallback fetch should serve the cache: %v", err)
	}
	if string(data) != tinyList {
		t.Error("fallback served wrong bytes")
	}
}

// TestFetcherHTTPErrorNoCache verifies a failing source with no cache is an
// error, not a silent empty list.
func TestFetcherHTTPErrorNoCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, nil, testLogger)
	if _, _, err := fetcher.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
}

// TestFetcherBodyLimit verifies oversized responses fail instead of
// consuming unbounded memory.
func TestFetcherBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		chunk := strings.Repeat("A", 1024*1024)
		for i := 0; i < 17; i++ {
			if _, err := w.Write([]byte(chunk)); err != nil {
				return // client stopped reading
			}
		}
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, nil, testLogger)
	_, _, err := fetcher.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for oversized response, got nil")
	}
	if !strings.Contains(err.Error(), "byte limit") {
		t.Errorf("expected body limit error, got: %v", err)
	}
}

// TestCachePrune verifies old snapshots are removed and the newest wins.
func TestCachePrune(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir, 3)

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		data := []byte(strings.Repeat("x", i+1))
		if err := cache.Write(data, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("cache holds %d files, want 3", len(entries))
	}

	data, ts, err := cache.LoadLatest()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 5 {
		t.Errorf("latest snapshot size = %d, want 5", len(data))
	}
	if !ts.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("latest ts = %v, want %v", ts, base.Add(4*time.Minute))
	}
}
