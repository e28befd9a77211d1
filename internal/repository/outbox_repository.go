package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skillswap/skillswap-server/internal/model"
	"github.com/skillswap/skillswap-server/internal/repository/base"
)

// OutboxRepository stores session events whose broker publish failed
// until the retry scheduler delivers them.
type OutboxRepository struct {
	*base.Repository
}

func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{Repository: base.NewRepository(pool)}
}

// Enqueue records a failed event for later delivery.
func (r *OutboxRepository) Enqueue(ctx context.Context, event string, payload []byte) error {
	query := `
		INSERT INTO notification_outbox (id, event, payload, attempts, next_attempt_at)
		VALUES ($1, $2, $3::jsonb, 0, now())
	`

	_, err := r.ExecAffected(ctx, query, uuid.New(), event, string(payload))
	if err != nil {
		return fmt.Errorf("enqueue outbox entry: %w", err)
	}

	return nil
}

// ListDue returns undelivered entries whose retry time has passed.
func (r *OutboxRepository) ListDue(ctx context.Context, limit int) ([]model.OutboxEntry, error) {
	query := `
		SELECT id, event, payload, attempts, next_attempt_at, created_at
		FROM notification_outbox
		WHERE delivered_at IS NULL AND next_attempt_at <= now()
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list due outbox entries: %w", err)
	}
	defer rows.Close()

	var entries []model.OutboxEntry
	for rows.Next() {
		var e model.OutboxEntry
		if err := rows.Scan(&e.ID, &e.Event, &e.Payload, &e.Attempts, &e.NextAttemptAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// MarkDelivered flags an entry as published.
func (r *OutboxRepository) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notification_outbox SET delivered_at = now() WHERE id = $1`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark outbox entry delivered: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("outbox entry not found")
	}

	return nil
}

// RecordFailure bumps the attempt counter and schedules the next try.
func (r *OutboxRepository) RecordFailure(ctx context.Context, id uuid.UUID, nextAttempt time.Time) error {
	query := `
		UPDATE notification_outbox
		SET attempts = attempts + 1, next_attempt_at = $2
		WHERE id = $1
	`

	affected, err := r.ExecAffected(ctx, query, id, nextAttempt)
	if err != nil {
		return fmt.Errorf("record outbox failure: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("outbox entry not found")
	}

	return nil
}
