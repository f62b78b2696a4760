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
	"go.opentelemetry.io/otel"

	"github.com/Dosada05/tournament-generator/brackets"
	"github.com/Dosada05/tournament-generator/config"
	"github.com/Dosada05/tournament-generator/db"
	"github.com/Dosada05/tournament-generator/eventbus"
	"github.com/Dosada05/tournament-generator/handlers"
	"github.com/Dosada05/tournament-generator/metrics"
	"github.com/Dosada05/tournament-generator/repositories"
	api "github.com/Dosada05/tournament-generator/routes"
	"github.com/Dosada05/tournament-generator/services"
	"github.com/Dosada05/tournament-generator/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.Server.Port), slog.String("database", cfg.Database.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dialect, err := repositories.ParseDialect(cfg.Database.Driver)
	if err != nil {
		logger.Error("unsupported database driver", slog.Any("error", err))
		os.Exit(1)
	}
	dbConn, err := db.Connect(cfg.Database.Driver, cfg.Database.URL, 5*time.Second)
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
	if err := repositories.Migrate(ctx, dbConn, dialect); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database ready")

	var (
		uploader  storage.FileUploader
		exportDir string
	)
	if cfg.Storage.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.Storage.AccountID,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			BucketName:      cfg.Storage.BucketName,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else if cfg.Storage.LocalDir != "" {
		exportDir = cfg.Storage.LocalDir
		uploader, err = storage.NewDirUploader(exportDir, fmt.Sprintf("http://localhost:%d/exports", cfg.Server.Port))
		if err != nil {
			logger.Error("failed to initialize export directory", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("exports stored locally", slog.String("dir", exportDir))
	}

	var recorder metrics.Recorder = metrics.Noop{}
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		m := metrics.New()
		recorder = m
		metricsHandler = m.Handler()
	}
	tracer := otel.Tracer("github.com/Dosada05/tournament-generator")

	bus := eventbus.New(logger)
	defer bus.Close()

	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	if err := handlers.RelayEvents(ctx, bus, wsHub); err != nil {
		logger.Error("failed to relay events to websocket clients", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("WebSocket Hub started")

	tournamentRepo := repositories.NewTournamentRepository(dbConn, dialect)
	simulationRepo := repositories.NewSimulationRepository(dbConn, dialect)

	tournamentService := services.NewTournamentService(dbConn, tournamentRepo, simulationRepo, logger, tracer)
	bracketService := services.NewBracketService(dbConn, tournamentRepo, brackets.DefaultRandomizer, bus, recorder, logger, tracer)
	simulationService := services.NewSimulationService(
		dbConn,
		tournamentRepo,
		simulationRepo,
		cfg.Simulation.Runs,
		cfg.Simulation.Seed,
		logger,
		recorder,
		tracer,
	)
	exportService := services.NewExportService(tournamentRepo, simulationService, uploader, logger, tracer)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Bracket:    handlers.NewBracketHandler(bracketService),
		Simulation: handlers.NewSimulationHandler(simulationService),
		Export:     handlers.NewExportHandler(exportService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, cfg.Server.AllowedOrigins, logger),
	}, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Metrics:        metricsHandler,
		ExportDir:      exportDir,
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

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
