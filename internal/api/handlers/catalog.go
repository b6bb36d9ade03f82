package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardstack-tools/deckmatcher/internal/metrics"
	"github.com/cardstack-tools/deckmatcher/internal/services"
)

type CatalogHandler struct {
	store     *services.CatalogStore
	fetcher   *services.CatalogFetcher
	snapshots *services.SnapshotStore
}

func NewCatalogHandler(store *services.CatalogStore, fetcher *services.CatalogFetcher, snapshots *services.SnapshotStore) *CatalogHandler {
	return &CatalogHandler{
		store:     store,
		fetcher:   fetcher,
		snapshots: snapshots,
	}
}

type refreshCatalogRequest struct {
	URL string `json:"url"`
}

// RefreshCatalog builds a new catalog from a vendor source and swaps it in.
// The request either carries the raw catalog text as the body, or a JSON
// body with a "url" to fetch. A parse failure leaves the current catalog
// untouched; the previous snapshot stays the fallback.
func (h *CatalogHandler) RefreshCatalog(c *gin.Context) {
	raw, source, ok := h.catalogSource(c)
	if !ok {
		return
	}

	parseStart := time.Now()
	variants, err := services.ParseCatalog(raw, 0)
	if err != nil {
		var parseErr *services.CatalogParseError
		if errors.As(err, &parseErr) {
			metrics.CatalogRefreshesTotal.WithLabelValues("parse_error").Inc()
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   parseErr.Reason,
				"snippet": parseErr.Snippet,
			})
			return
		}
		metrics.CatalogRefreshesTotal.WithLabelValues("parse_error").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	deduped := services.DeduplicateVariants(variants)
	fetchedAt := time.Now()
	catalog := services.NewCatalog(deduped, source, fetchedAt)
	metrics.CatalogParseDuration.Observe(time.Since(parseStart).Seconds())

	h.store.Swap(catalog)
	metrics.CatalogRefreshesTotal.WithLabelValues("ok").Inc()
	metrics.CatalogVariants.Set(float64(catalog.Len()))
	log.Printf("Catalog refreshed from %s: %d variants (%d before dedup)", source, catalog.Len(), len(variants))

	h.snapshotAsync(source, fetchedAt, catalog)

	c.JSON(http.StatusOK, gin.H{
		"variants":        catalog.Len(),
		"source":          source,
		"fetched_at":      fetchedAt,
		"rows_parsed":     len(variants),
		"rows_deduped":    len(variants) - catalog.Len(),
	})
}

// catalogSource reads the raw catalog text from the request: either fetched
// from a JSON-supplied URL or taken verbatim from the body.
func (h *CatalogHandler) catalogSource(c *gin.Context) (raw, source string, ok bool) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req refreshCatalogRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON body must carry a non-empty 'url'"})
			return "", "", false
		}
		fetched, err := h.fetcher.Fetch(c.Request.Context(), req.URL)
		if err != nil {
			metrics.CatalogRefreshesTotal.WithLabelValues("fetch_error").Inc()
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return "", "", false
		}
		return fetched, req.URL, true
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, services.DefaultMaxCatalogBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return "", "", false
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is empty"})
		return "", "", false
	}
	return string(body), "upload", true
}

// snapshotAsync persists the refreshed catalog in the background so the
// refresh response doesn't wait on SQLite.
func (h *CatalogHandler) snapshotAsync(source string, fetchedAt time.Time, catalog *services.Catalog) {
	if h.snapshots == nil {
		return
	}
	go func() {
		if err := h.snapshots.Save(source, fetchedAt, catalog.Variants()); err != nil {
			log.Printf("Warning: failed to snapshot catalog from %s: %v", source, err)
		}
	}()
}

func (h *CatalogHandler) GetStatus(c *gin.Context) {
	catalog := h.store.Current()
	if catalog == nil {
		c.JSON(http.StatusOK, gin.H{"loaded": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"loaded":     true,
		"variants":   catalog.Len(),
		"source":     catalog.Source(),
		"fetched_at": catalog.FetchedAt(),
	})
}
