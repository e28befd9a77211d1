package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skillswap/skillswap-server/internal/api"
	"github.com/skillswap/skillswap-server/internal/app"
	"github.com/skillswap/skillswap-server/internal/config"
	"github.com/skillswap/skillswap-server/internal/notify"
	"github.com/skillswap/skillswap-server/internal/repository"
	"github.com/skillswap/skillswap-server/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting skillswap session service",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to reach database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	sessionRepo := repository.NewSessionRepository(pool)
	outboxRepo := repository.NewOutboxRepository(pool)
	directory := repository.NewUserDirectory(pool)

	var publisher notify.Publisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.EventExchange)
		if err != nil {
			logger.Fatal("Failed to connect to broker", zap.Error(err))
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	} else {
		logger.Warn("AMQP_URL not set, session events go to the log only")
		publisher = notify.NewLogPublisher(logger)
	}

	dispatcher := notify.NewDispatcher(publisher, outboxRepo, logger)
	reviews := notify.NewReviewBridge(publisher)

	bookingService := service.NewBookingService(sessionRepo, directory, dispatcher, logger)
	responseService := service.NewResponseService(sessionRepo, dispatcher, reviews, logger)
	conflictDetector := service.NewConflictDetector(sessionRepo, logger)

	scheduler := app.NewScheduler(outboxRepo, publisher, cfg.OutboxInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	handler := api.NewHandler(bookingService, responseService, conflictDetector, logger)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		logger.Fatal("HTTP server failed", zap.Error(err))
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", zap.Error(err))
	}
}
