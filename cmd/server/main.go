package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stocklens/backend/config"
	httpDelivery "github.com/stocklens/backend/internal/delivery/http"
	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/infrastructure/cache"
	"github.com/stocklens/backend/internal/infrastructure/retailer"
	"github.com/stocklens/backend/internal/infrastructure/stockapi"
	"github.com/stocklens/backend/internal/infrastructure/storage"
	"github.com/stocklens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting StockLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Storage: %s", cfg.Storage.Type)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()
	defer memoryCache.Close()

	blobs, closeBlobs, err := openBlobStore(cfg, memoryCache)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeBlobs()

	stockClient := stockapi.NewClient(stockapi.ClientConfig{
		BaseURL:           cfg.StockAPI.BaseURL,
		Token:             cfg.StockAPI.Token,
		Timeout:           cfg.StockAPI.Timeout,
		RequestsPerSecond: cfg.StockAPI.RequestsPerSecond,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		stockClient.SetDebug(true)
		log.Printf("Stock API client debug mode enabled")
	}

	if cfg.StockAPI.Token != "" {
		log.Printf("Stock API configured: %s (token set)", cfg.StockAPI.BaseURL)
	} else {
		log.Printf("Stock API configured: %s (no token)", cfg.StockAPI.BaseURL)
	}

	// Initialize usecase layer
	persistence := usecase.NewPersistenceService(blobs, usecase.PersistenceServiceConfig{
		SchemaVersion: cfg.Storage.SchemaVersion,
		MaxRecent:     cfg.Persistence.MaxRecent,
		FeedLimit:     cfg.Persistence.FeedLimit,
	})
	sessions := usecase.NewSessionService(memoryCache, usecase.SessionServiceConfig{
		SchemaVersion: cfg.Storage.SchemaVersion,
		ZipTTL:        cfg.Session.ZipTTL,
	})
	stockService := usecase.NewStockService(
		stockClient,
		retailer.DefaultRegistry(),
		persistence,
		sessions,
		memoryCache,
		usecase.StockServiceConfig{LookupCacheTTL: cfg.Cache.LookupTTL},
	)

	log.Printf("Recent searches: max=%d, feed=%d, lookup cache TTL=%s",
		cfg.Persistence.MaxRecent,
		cfg.Persistence.FeedLimit,
		cfg.Cache.LookupTTL)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(stockService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// openBlobStore returns the configured durable store and its closer
func openBlobStore(cfg *config.Config, memoryCache *cache.MemoryCache) (domain.BlobStore, func(), error) {
	switch cfg.Storage.Type {
	case "memory":
		log.Printf("WARNING: recent searches are kept in memory and lost on restart")
		return cache.NewMemoryBlobStore(memoryCache), func() {}, nil
	default:
		store, err := storage.OpenSqlite(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("SQLite storage: %s", cfg.Storage.Path)
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("Failed to close storage: %v", err)
			}
		}, nil
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
