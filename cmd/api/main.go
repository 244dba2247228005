// Package main is the entry point for the trips service.
// Its sole responsibility is wiring dependencies together and starting the
// HTTP server and the enrichment consumer. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for goose
	"github.com/pressly/goose/v3"

	"trips-service/internal/config"
	"trips-service/internal/geocoding"
	"trips-service/internal/handler"
	"trips-service/internal/middleware"
	"trips-service/internal/rabbit"
	"trips-service/internal/repo"
	"trips-service/internal/service"
	"trips-service/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := runMigrations(ctx, cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Message bus ------------------------------------------------------
	mq, err := rabbit.Connect(ctx, cfg.AMQPURL, logger)
	if err != nil {
		slog.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer mq.Close()

	// --- Services ---------------------------------------------------------
	trips := repo.NewTripRepo(pool)
	publisher := rabbit.NewPublisher(mq)
	tripService := service.NewTripService(trips, publisher)
	geolocator := geocoding.NewClient(cfg.GeocodingAPIURL, cfg.GeocodingAPIKey)
	enricher := service.NewEnrichmentService(trips, geolocator, logger)

	consumer := rabbit.NewConsumer(mq, enricher, logger, cfg.EnrichmentMaxAttempts)
	go func() {
		if err := consumer.Run(ctx); err != nil {
			slog.Error("enrichment consumer stopped", "error", err)
		}
	}()

	if cfg.ReconcileInterval > 0 {
		reconciler := service.NewReconciler(trips, publisher, logger, cfg.ReconcileInterval, cfg.ReconcileMinAge)
		go reconciler.Run(ctx)
		slog.Info("reconciliation sweep enabled", "interval", cfg.ReconcileInterval, "min_age", cfg.ReconcileMinAge)
	}

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → request logging → Recoverer →
	// CORS → body limit; bearer auth wraps the /trips routes only, so the
	// health endpoint stays probeable without credentials.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(1 << 20))

	srv := handler.NewServer(tripService)
	r.Get("/healthz", srv.GetHealth)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewBearerAuth(cfg.AuthToken))
		r.Mount("/trips", srv.TripRoutes())
	})

	// --- HTTP Server ------------------------------------------------------
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// runMigrations applies all pending embedded migrations at startup.
func runMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	if len(results) > 0 {
		slog.Info("migrations applied", "count", len(results))
	}
	return nil
}
