package flights

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxFetchBytes caps a flight list download. Real lists are tiny; anything
// near this size is a misconfigured source.
const maxFetchBytes = 16 << 20

// Fetcher retrieves raw flight list data from a local path or an HTTP(S)
// URL. HTTP fetches revalidate with ETag / If-Modified-Since and fall back
// to the disk cache when the source is unreachable or replies 304.
type Fetcher struct {
	source string
	client *http.Client
	cache  *Cache // nil disables disk caching
	logger *slog.Logger

	etag         string
	lastModified string
}

// NewFetcher creates a Fetcher for source, which may be a filesystem path or
// an http(s) URL. cache may be nil.
func NewFetcher(source string, cache *Cache, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		source: source,
		client: &http.Client{Timeout: 30 * time.Second},
		cache:  cache,
		logger: logger,
	}
}

// Source returns the configured source.
func (f *Fetcher) Source() string {
	return f.source
}

// Fetch returns the raw flight list bytes and the time they were obtained.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, time.Time, error) {
	if !isURL(f.source) {
		data, err := os.ReadFile(f.source)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("reading flight list: %w", err)
		}
		return data, time.Now().UTC(), nil
	}
	return f.fetchHTTP(ctx)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (f *Fetcher) fetchHTTP(ctx context.Context) ([]byte, time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.source, nil)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("creating request: %w", err)
	}
	if f.etag != "" {
		req.Header.Set("If-None-Match", f.etag)
	}
	if f.lastModified != "" {
		req.Header.Set("If-Modified-Since", f.lastModified)
	} else if f.cache != nil {
		// Cold start: the cached snapshot's age stands in for a validator.
		if _, ts, cerr := f.cache.LoadLatest(); cerr == nil {
			req.Header.Set("If-Modified-Since", ts.UTC().Format(http.TimeFormat))
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return f.fallback(fmt.Errorf("fetching flight list: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		data, ts, cerr := f.loadCached()
		if cerr != nil {
			return nil, time.Time{}, fmt.Errorf("source replied 304 but no cached copy available: %w", cerr)
		}
		f.logger.Debug("flight list unchanged, serving cached copy", "cached_at", ts)
		return data, ts, nil
	case resp.StatusCode != http.StatusOK:
		return f.fallback(fmt.Errorf("unexpected status %d from %s", resp.StatusCode, f.source))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return f.fallback(fmt.Errorf("reading response body: %w", err))
	}
	if len(data) > maxFetchBytes {
		return nil, time.Time{}, fmt.Errorf("flight list exceeds %d byte limit", maxFetchBytes)
	}

	f.etag = resp.Header.Get("ETag")
	f.lastModified = resp.Header.Get("Last-Modified")

	now := time.Now().UTC()
	if f.cache != nil {
		if err := f.cache.Write(data, now); err != nil {
			f.logger.Warn("failed to cache flight list", "error", err)
		}
	}
	return data, now, nil
}

// fallback serves the cached snapshot, if any, when the live fetch fails.
func (f *Fetcher) fallback(cause error) ([]byte, time.Time, error) {
	data, ts, err := f.loadCached()
	if err != nil {
		return nil, time.Time{}, cause
	}
	f.logger.Warn("flight list fetch failed, serving cached copy", "error", cause, "cached_at", ts)
	return data, ts, nil
}

func (f *Fetcher) loadCached() ([]byte, time.Time, error) {
	if f.cache == nil {
		return nil, time.Time{}, errors.New("no cache configured")
	}
	return f.cache.LoadLatest()
}
