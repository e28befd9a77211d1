package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/skillswap/skillswap-server/internal/model"
	"github.com/skillswap/skillswap-server/internal/notify"
	"go.uber.org/zap"
)

// OutboxQueue is the slice of the outbox repository the scheduler
// drains.
type OutboxQueue interface {
	ListDue(ctx context.Context, limit int) ([]model.OutboxEntry, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	RecordFailure(ctx context.Context, id uuid.UUID, nextAttempt time.Time) error
}

const (
	drainBatchSize = 50
	maxRetryDelay  = time.Hour
)

// Scheduler periodically redelivers session events whose original
// publish failed. It owns its whole lifecycle: no package-level state,
// Start and Stop bracket the background goroutine.
type Scheduler struct {
	outbox    OutboxQueue
	publisher notify.Publisher
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
}

func NewScheduler(outbox OutboxQueue, publisher notify.Publisher, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start launches the redelivery loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting notification retry scheduler",
		zap.Duration("interval", s.interval),
	)

	go s.runRedeliveryTask(ctx)
}

// Stop halts the redelivery loop.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping notification retry scheduler")
	close(s.stopChan)
}

func (s *Scheduler) runRedeliveryTask(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.drain(ctx)
		case <-s.stopChan:
			s.logger.Info("Redelivery task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Redelivery task cancelled")
			return
		}
	}
}

// drain tries to deliver every due outbox entry once, with a short
// exponential backoff around transient broker errors.
func (s *Scheduler) drain(ctx context.Context) {
	entries, err := s.outbox.ListDue(ctx, drainBatchSize)
	if err != nil {
		s.logger.Error("Failed to list due outbox entries", zap.Error(err))
		return
	}

	for _, entry := range entries {
		backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))

		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := s.publisher.Publish(ctx, entry.Event, entry.Payload); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})

		if err != nil {
			next := time.Now().Add(retryDelay(entry.Attempts + 1))
			s.logger.Warn("Redelivery failed",
				zap.String("outbox_id", entry.ID.String()),
				zap.String("event", entry.Event),
				zap.Int("attempts", entry.Attempts+1),
				zap.Time("next_attempt_at", next),
				zap.Error(err),
			)
			if err := s.outbox.RecordFailure(ctx, entry.ID, next); err != nil {
				s.logger.Error("Failed to record outbox failure", zap.Error(err))
			}
			continue
		}

		if err := s.outbox.MarkDelivered(ctx, entry.ID); err != nil {
			s.logger.Error("Failed to mark outbox entry delivered", zap.Error(err))
			continue
		}

		s.logger.Info("Session event redelivered",
			zap.String("outbox_id", entry.ID.String()),
			zap.String("event", entry.Event),
		)
	}
}

// retryDelay doubles per attempt, capped at an hour.
func retryDelay(attempts int) time.Duration {
	delay := time.Minute
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}
