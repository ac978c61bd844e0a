// Deposit Saver - house deposit planning service
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/api"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/config"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/events"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/finance"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/identity"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/lookup"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/middleware"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/planner"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/pricecache"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/store"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

const requestsPerMinute = 60

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Pick the price cache backend. SQLite shares the session database;
	// Redis and memory are opt-in alternatives.
	var cacheStore pricecache.Store
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		redisStore, err := store.NewRedis(cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			slog.Error("Failed to connect to Redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := redisStore.Close(); closeErr != nil {
				slog.Error("Failed to close Redis client", "error", closeErr)
			}
		}()
		cacheStore = redisStore
	case config.CacheBackendMemory:
		cacheStore = pricecache.NewMemoryStore()
	default:
		cacheStore = repo
	}
	cache := pricecache.New(cacheStore, cfg.CacheOpTimeout, cfg.CacheTTL)
	slog.Info("Price cache ready", "backend", cfg.CacheBackend, "ttl", cfg.CacheTTL)

	// Collaborators: price source and postcode checker.
	var prices lookup.PriceSource
	if cfg.PriceAPIURL != "" {
		prices = lookup.NewHTTPSource(cfg.PriceAPIURL, cfg.LookupTimeout)
		slog.Info("Using HTTP price source", "url", cfg.PriceAPIURL)
	} else {
		prices = lookup.NewStaticSource()
		slog.Info("Using built-in static price table")
	}
	postcodes := lookup.NewPostcodeClient(cfg.PostcodeAPIURL, cfg.LookupTimeout)

	policy := finance.DefaultPolicy()
	policy.DepositPercent = cfg.DepositPercent
	policy.MinMonths = cfg.MinStatementMonths
	engine := finance.NewEngine(policy)

	svc := planner.NewService(repo, cache, prices, postcodes, engine, cfg.LookupTimeout)

	if cfg.AuditLogDir != "" {
		auditLog, err := planner.NewAuditLog(cfg.AuditLogDir, 256)
		if err != nil {
			slog.Error("Failed to initialize audit log", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := auditLog.Close(); closeErr != nil {
				slog.Error("Failed to close audit log", "error", closeErr)
			}
		}()
		svc.SetAuditLog(auditLog)
		slog.Info("Audit log enabled", "dir", cfg.AuditLogDir)
	}

	hub := events.NewHub()
	svc.SetNotifier(hub)

	// Initialize handlers.
	planningHandler := api.NewPlanningHandler(svc)
	healthHandler := api.NewHealthHandler(repo, cache)
	eventsHandler := events.NewHandler(svc, hub, cfg.AllowedOrigins, cfg.IsDevelopment())
	rateLimiter := middleware.NewRateLimiter(requestsPerMinute, time.Minute)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(identity.Middleware(cfg.IsDevelopment()))
	r.Use(rateLimiter.Handler)

	// Routes.
	healthHandler.RegisterHealth(r)
	planningHandler.RegisterRoutes(r)

	// WebSocket event stream.
	r.Get("/api/sessions/{sessionID}/events", eventsHandler.ServeHTTP)

	// Create server.
	// Note: WebSocket streams require long timeouts (no WriteTimeout).
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,                 // 0 = no timeout for event stream support
		IdleTimeout:  120 * time.Second, // 2 minutes for idle connections
	}

	// Start session janitor.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	planner.StartJanitor(ctx, svc, cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
