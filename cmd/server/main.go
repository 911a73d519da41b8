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

	"github.com/Dosada05/rank-ladder/config"
	"github.com/Dosada05/rank-ladder/db"
	"github.com/Dosada05/rank-ladder/db/migrate"
	"github.com/Dosada05/rank-ladder/handlers"
	"github.com/Dosada05/rank-ladder/middleware"
	"github.com/Dosada05/rank-ladder/notify"
	"github.com/Dosada05/rank-ladder/repositories"
	api "github.com/Dosada05/rank-ladder/routes"
	"github.com/Dosada05/rank-ladder/services"
	"github.com/Dosada05/rank-ladder/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	if cfg.MigrateOnStart {
		if err := migrate.Run(cfg.DatabaseURL, migrate.Up); err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, db.DefaultPoolConfig)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	membershipRepo := repositories.NewPostgresMembershipRepository(dbConn)
	challengeRepo := repositories.NewPostgresChallengeRepository(dbConn)
	historyRepo := repositories.NewPostgresRankHistoryRepository(dbConn)
	transactor := repositories.NewPostgresTransactor(dbConn, cfg.DBLockTimeout)

	ladderService := services.NewLadderService(teamRepo, membershipRepo, historyRepo)

	wsHub := notify.NewHub(logger)
	go wsHub.Run(rootCtx)

	sinks := []notify.Sink{wsHub}
	if cfg.DiscordRelayEnabled() {
		sinks = append(sinks, notify.NewDiscordRelay(notify.DiscordRelayConfig{
			URL:   cfg.DiscordRelayURL,
			Token: cfg.DiscordRelayToken,
		}, nil))
		logger.Info("discord relay enabled")
	}
	if cfg.R2.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(rootCtx, cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		sinks = append(sinks, notify.NewSnapshotArchiver(ladderService, uploader, logger))
		logger.Info("ladder snapshot archive enabled", slog.String("bucket", cfg.R2.BucketName))
	}
	background := services.NewBackgroundNotifier(notify.NewFanout(logger, sinks...), cfg.NotifyTimeout, logger)

	authService := services.NewAuthService(userRepo)
	challengeService := services.NewChallengeService(challengeRepo, membershipRepo, background, logger)
	outcomeService := services.NewOutcomeService(transactor, challengeRepo, membershipRepo, historyRepo, userRepo, background, logger)

	router := api.SetupRoutes(api.Handlers{
		Auth:      handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Challenge: handlers.NewChallengeHandler(challengeService, outcomeService),
		Ladder:    handlers.NewLadderHandler(ladderService),
		WebSocket: handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins),
		Health:    handlers.NewHealthHandler(dbConn),
	}, middleware.NewAuthenticator(cfg.JWTSecretKey), cfg.CORSAllowedOrigins)

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

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		}
	}

	// Committed outcomes may still have notifications in flight.
	background.Wait()
	logger.Info("application exited")
}
