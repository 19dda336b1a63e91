package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/pickleball-league/config"
	"github.com/Dosada05/pickleball-league/db"
	"github.com/Dosada05/pickleball-league/handlers"
	"github.com/Dosada05/pickleball-league/live"
	"github.com/Dosada05/pickleball-league/repositories"
	api "github.com/Dosada05/pickleball-league/routes"
	"github.com/Dosada05/pickleball-league/services"
	"github.com/Dosada05/pickleball-league/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	dbConn, dialect, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.Migrate(ctx, dbConn, dialect); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database ready", slog.String("dialect", string(dialect)))

	archive := storage.NewNoopArchive()
	if cfg.R2.Enabled() {
		archive, err = storage.NewCloudflareR2Archive(ctx, cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 archive", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 match archive enabled", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Info("match archive disabled, R2 is not configured")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket hub started")

	matchRepo := repositories.NewMatchRepository(dbConn, dialect)
	playerRepo := repositories.NewPlayerRepository(dbConn, dialect)

	matchService := services.NewMatchService(matchRepo, playerRepo)
	scoringService := services.NewScoringService(matchRepo, playerRepo, wsHub, archive, cfg.ScoringDefaults(), logger)

	go func() {
		ticker := time.NewTicker(cfg.SessionIdleTimeout / 4)
		defer ticker.Stop()
		logger.Info("idle session sweeper started", slog.Duration("idle_timeout", cfg.SessionIdleTimeout))
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := scoringService.EvictIdle(cfg.SessionIdleTimeout); n > 0 {
					logger.Info("idle umpire sessions evicted", slog.Int("count", n))
				}
			}
		}
	}()

	matchHandler := handlers.NewMatchHandler(matchService)
	scoringHandler := handlers.NewScoringHandler(scoringService, logger)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, matchService, cfg.CORSAllowedOrigins, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, matchHandler, scoringHandler, webSocketHandler, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		// Closing the hub first releases websocket connections the server
		// does not track.
		stop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
