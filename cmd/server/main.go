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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "go-flix-app/docs"
	"go-flix-app/internal/adapter/api/rest"
	"go-flix-app/internal/adapter/identity/oidc"
	"go-flix-app/internal/adapter/session/redis"
	repo "go-flix-app/internal/adapter/storage/postgres"
	"go-flix-app/internal/config"
	"go-flix-app/internal/core/ports"
	"go-flix-app/internal/core/service"
	"go-flix-app/internal/observability"
)

// @title			Flix API
// @version		1.0
// @description	Movie catalog with per-user favorites.
// @BasePath		/

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, relying on environment variables")
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Init Tracing
	tpShutdown, err := observability.InitTracerProvider(ctx, "flix-service", cfg.OtelExporterEndpoint)
	if err != nil {
		logger.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := tpShutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// Run Migrations (Apply on Startup)
	if err := repo.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Init DB
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// Metrics: DB Stats Poller
	observability.StartDBStatsCollector(ctx, dbPool, 15*time.Second)

	// Init Session Store
	sessionStore := redis.NewStore(cfg.RedisAddr)
	defer sessionStore.Close()
	observability.StartSessionCollector(ctx, sessionStore, 30*time.Second)

	// External identity provider is optional.
	var verifier ports.IdentityVerifier
	if cfg.ExternalSignInEnabled() {
		v, err := oidc.NewVerifier(ctx, cfg.OIDCIssuerURL, cfg.OIDCClientID, logger)
		if err != nil {
			logger.Error("failed to init identity provider", "issuer", cfg.OIDCIssuerURL, "error", err)
			os.Exit(1)
		}
		verifier = v
	} else {
		logger.Info("external sign-in disabled")
	}

	// Repository Init
	userRepo := repo.NewUserRepository(dbPool)
	movieRepo := repo.NewMovieRepository(dbPool)

	// Service Init
	authSvc := service.NewAuthService(userRepo, verifier, logger)
	sessionSvc := service.NewSessionService(observability.NewInstrumentedSessionStore(sessionStore), userRepo, cfg.SessionSecret, cfg.SessionTTL, logger)
	catalogSvc := service.NewCatalogService(movieRepo, logger)
	favoriteSvc := service.NewFavoriteService(userRepo, movieRepo, logger)

	// Init Handlers
	handler := rest.NewHandler(catalogSvc, favoriteSvc, logger)
	authHandler := rest.NewAuthHandler(authSvc, sessionSvc, logger, cfg.CookieSecure)

	// Init Router
	router := rest.NewRouter(handler, authHandler, sessionSvc, logger, rest.RouterConfig{
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustProxy:         cfg.TrustProxy,
		HealthChecks: map[string]rest.HealthCheck{
			"postgres": dbPool.Ping,
			"redis":    sessionStore.Ping,
		},
		RouteMiddleware: []rest.Middleware{observability.Middleware},
	}, rest.RequestID, rest.Logger(logger))

	// Note: Usually /metrics is on a separate admin port or protected, adding to main mux for simplicity
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		logger.Info("Starting server", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
