package api

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardstack-tools/deckmatcher/internal/api/handlers"
	"github.com/cardstack-tools/deckmatcher/internal/metrics"
	"github.com/cardstack-tools/deckmatcher/internal/services"
)

func SetupRouter(store *services.CatalogStore, fetcher *services.CatalogFetcher, snapshots *services.SnapshotStore, sessions *services.SessionStore) *gin.Engine {
	router := gin.Default()

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false // Explicitly set
	router.Use(cors.New(config))
	router.Use(metricsMiddleware())

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(store, fetcher, snapshots)
	decklistHandler := handlers.NewDecklistHandler(store, sessions)

	// API routes
	api := router.Group("/api")
	{
		catalog := api.Group("/catalog")
		{
			catalog.POST("", catalogHandler.RefreshCatalog)
			catalog.GET("/status", catalogHandler.GetStatus)
		}

		decklists := api.Group("/decklists")
		{
			decklists.POST("/resolve", decklistHandler.ResolveDecklist)
			decklists.GET("/:id", decklistHandler.GetSession)
			decklists.POST("/:id/entries/:index/select", decklistHandler.SelectCandidate)
			decklists.GET("/:id/export", decklistHandler.ExportCSV)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
