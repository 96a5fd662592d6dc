package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightclass/brightclass-backend/internal/config"
	"github.com/brightclass/brightclass-backend/internal/database"
	"github.com/brightclass/brightclass-backend/internal/handler"
	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/mailer"
	"github.com/brightclass/brightclass-backend/internal/repository"
	"github.com/brightclass/brightclass-backend/internal/router"
	"github.com/brightclass/brightclass-backend/internal/schedule"
	"github.com/brightclass/brightclass-backend/internal/service"
	"github.com/brightclass/brightclass-backend/internal/validator"
	"github.com/brightclass/brightclass-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting BrightClass Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	clock := schedule.RealClock{}
	mail := mailer.New(cfg, log)

	authService := service.NewAuthService(cfg)
	notificationService := service.NewNotificationService(notificationRepo, mail, rdb, log)
	quizService := service.NewQuizService(
		quizRepo, submissionRepo, userRepo, notificationService,
		rdb, cfg.StatsCacheTTL, clock, log,
	)
	aiService := service.NewAIService(cfg, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, userRepo),
		Quiz:         handler.NewQuizHandler(quizService, aiService, userRepo),
		Notification: handler.NewNotificationHandler(notificationService),
		WS:           handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	retentionWorker := worker.NewRetentionWorker(quizRepo, cfg.RetentionPeriod, cfg.SweepInterval, clock, log)
	go retentionWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the retention worker.
	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
