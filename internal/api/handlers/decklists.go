package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardstack-tools/deckmatcher/internal/metrics"
	"github.com/cardstack-tools/deckmatcher/internal/models"
	"github.com/cardstack-tools/deckmatcher/internal/services"
)

type DecklistHandler struct {
	store    *services.CatalogStore
	sessions *services.SessionStore
}

func NewDecklistHandler(store *services.CatalogStore, sessions *services.SessionStore) *DecklistHandler {
	return &DecklistHandler{
		store:    store,
		sessions: sessions,
	}
}

type resolveRequest struct {
	Text   string              `json:"text"`
	Config *models.MatchConfig `json:"config"`
}

type selectRequest struct {
	SKU      string                 `json:"sku"`
	Override *models.ManualOverride `json:"override"`
}

// ResolveDecklist parses the submitted decklist text and matches every entry
// against the current catalog, returning a new resolution session.
func (h *DecklistHandler) ResolveDecklist(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'text' is required"})
		return
	}

	catalog := h.store.Current()
	if catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no catalog loaded; POST /api/catalog first"})
		return
	}

	config := models.DefaultMatchConfig()
	if req.Config != nil {
		config = *req.Config
		if config.VariantPriority == nil {
			config.VariantPriority = models.DefaultMatchConfig().VariantPriority
		}
	}

	entries := services.ParseDecklist(req.Text)

	start := time.Now()
	matches := services.MatchAll(entries, catalog, config)
	metrics.ResolutionDuration.Observe(time.Since(start).Seconds())
	metrics.ResolutionEntries.Observe(float64(len(entries)))
	for _, m := range matches {
		metrics.MatchOutcomesTotal.WithLabelValues(string(m.Status)).Inc()
	}

	session := h.sessions.Create(matches, config, catalog)
	metrics.SessionsActive.Set(float64(h.sessions.Len()))
	log.Printf("Resolved decklist %s: %d entries against %d variants", session.ID, len(entries), catalog.Len())

	c.JSON(http.StatusOK, session)
}

func (h *DecklistHandler) GetSession(c *gin.Context) {
	session, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// SelectCandidate applies a manual choice to one entry: either the SKU of an
// existing candidate, or a forced override accepted unconditionally.
func (h *DecklistHandler) SelectCandidate(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entry index must be an integer"})
		return
	}

	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}
	if req.SKU == "" && req.Override == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either 'sku' or 'override' is required"})
		return
	}

	session, err := h.sessions.Select(c.Param("id"), index, req.SKU, req.Override)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	metrics.MatchOutcomesTotal.WithLabelValues(string(models.StatusManualSelected)).Inc()
	c.JSON(http.StatusOK, session.Matches[index])
}

// ExportCSV streams the aggregated purchase CSV for a session.
func (h *DecklistHandler) ExportCSV(c *gin.Context) {
	session, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=decklist-%s.csv", session.ID))
	if err := services.WriteExportCSV(c.Writer, session.Matches); err != nil {
		log.Printf("Warning: CSV export for session %s failed mid-stream: %v", session.ID, err)
		return
	}
	metrics.ExportsTotal.Inc()
}
