package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const (
	fetcherDefaultTimeout = 30 * time.Second
	fetcherCacheSize      = 8
)

// CatalogFetcher downloads raw catalog text from vendor URLs. Requests are
// rate limited (vendors throttle scrapers) and recent responses are kept in
// a small LRU so repeated refreshes of the same URL don't re-download.
type CatalogFetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	cache    *lru.Cache[string, string]
	maxBytes int
}

// NewCatalogFetcher creates a fetcher capped at maxBytes per response body.
// maxBytes <= 0 applies DefaultMaxCatalogBytes.
func NewCatalogFetcher(maxBytes int) *CatalogFetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxCatalogBytes
	}
	cache, err := lru.New[string, string](fetcherCacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(err)
	}
	return &CatalogFetcher{
		client: &http.Client{
			Timeout: fetcherDefaultTimeout,
		},
		limiter:  rate.NewLimiter(rate.Every(2*time.Second), 1),
		cache:    cache,
		maxBytes: maxBytes,
	}
}

// Fetch returns the raw catalog text at url, from cache when fresh enough.
func (f *CatalogFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if cached, ok := f.cache.Get(url); ok {
		log.Printf("Catalog fetch: cache hit for %s (%d bytes)", url, len(cached))
		return cached, nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html, text/csv, text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("catalog fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("catalog fetch: %s returned status %d", url, resp.StatusCode)
	}

	// Read one byte past the cap so oversized responses are detected instead
	// of silently truncated.
	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(f.maxBytes)+1))
	if err != nil {
		return "", fmt.Errorf("catalog fetch: reading body: %w", err)
	}
	if len(body) > f.maxBytes {
		return "", &CatalogParseError{
			Reason: fmt.Sprintf("response from %s exceeds limit of %d bytes", url, f.maxBytes),
		}
	}

	raw := string(body)
	f.cache.Add(url, raw)
	return raw, nil
}
