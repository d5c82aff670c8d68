package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IIXINGCHEN/ip-api-production/internal/adapter/controller/http/handlers"
	"github.com/IIXINGCHEN/ip-api-production/internal/adapter/controller/http/middleware"
	"github.com/IIXINGCHEN/ip-api-production/internal/adapter/external/provider"
	"github.com/IIXINGCHEN/ip-api-production/internal/config"
	"github.com/IIXINGCHEN/ip-api-production/internal/domain/netranges"
	"github.com/IIXINGCHEN/ip-api-production/internal/usecase/aggregation"
	"github.com/IIXINGCHEN/ip-api-production/internal/usecase/threat"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := config.SetupLogger(cfg)
	logger.Info("Starting IP API",
		"env", cfg.App.Env,
		"port", cfg.App.Port,
	)

	// Static range tables, loaded once at startup
	tables, err := netranges.LoadEmbedded()
	if err != nil {
		logger.Error("Failed to load range tables", "error", err)
		os.Exit(1)
	}

	// Provider registry, highest priority first
	mmdb, err := provider.NewMMDBProvider(provider.MMDBConfig{
		Path:     cfg.Providers.MMDBPath,
		Priority: cfg.Providers.MMDBPriority,
	})
	if err != nil {
		logger.Error("Failed to open local geo database", "error", err)
		os.Exit(1)
	}
	defer mmdb.Close()

	providers := []provider.Provider{
		provider.NewEdgeProvider(cfg.Providers.EdgePriority),
		provider.NewMaxMindClient(provider.MaxMindConfig{
			AccountID:  cfg.Providers.MaxMindAccountID,
			LicenseKey: cfg.Providers.MaxMindLicenseKey,
			Priority:   cfg.Providers.MaxMindPriority,
			Timeout:    cfg.Providers.Timeout,
		}),
		mmdb,
		provider.NewIPInfoClient(provider.IPInfoConfig{
			Token:    cfg.Providers.IPInfoToken,
			Priority: cfg.Providers.IPInfoPriority,
			Timeout:  cfg.Providers.Timeout,
		}),
	}

	// Engines
	threatSvc := threat.NewService(tables, cfg.SignalWeights(), logger)
	geoSvc := aggregation.NewService(providers, threatSvc, logger)

	lookup := handlers.NewLookupHandler(geoSvc, threatSvc, logger)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.SecurityHeaders)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Rate limiting
	r.Use(httprate.LimitByIP(cfg.App.RateLimit, time.Minute))

	// Health check
	r.Get("/health", handlers.Health)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/geo/{ip}", lookup.GetGeo)
		r.Get("/threat/{ip}", lookup.GetThreat)
		r.Get("/lookup/{ip}", lookup.GetLookup)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}
