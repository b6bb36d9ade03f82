package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cardstack-tools/deckmatcher/internal/api"
	"github.com/cardstack-tools/deckmatcher/internal/database"
	"github.com/cardstack-tools/deckmatcher/internal/metrics"
	"github.com/cardstack-tools/deckmatcher/internal/services"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./deckmatcher.db"
	}

	// Initialize database
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Catalog size cap (bytes), configurable for oversized vendor exports
	maxCatalogBytes := 0
	if limitStr := os.Getenv("MAX_CATALOG_BYTES"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			maxCatalogBytes = limit
		}
	}

	// Initialize services
	store := services.NewCatalogStore()
	fetcher := services.NewCatalogFetcher(maxCatalogBytes)
	snapshots := services.NewSnapshotStore(database.GetDB())
	sessions := services.NewSessionStore()

	// Restore the last good catalog so matching works before the first refresh
	if snapshot, variants, err := snapshots.Latest(); err != nil {
		log.Printf("Warning: failed to load catalog snapshot: %v", err)
	} else if snapshot != nil {
		deduped := services.DeduplicateVariants(variants)
		store.Swap(services.NewCatalog(deduped, snapshot.SourceURL, snapshot.FetchedAt))
		metrics.CatalogVariants.Set(float64(len(deduped)))
		log.Printf("Restored catalog snapshot from %s (%d variants, fetched %s)",
			snapshot.SourceURL, len(deduped), snapshot.FetchedAt.Format(time.RFC3339))
	}

	// Setup router
	router := api.SetupRouter(store, fetcher, snapshots, sessions)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
