package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/skillswap/skillswap-server/internal/model"
)

// reviewRoutingKey is consumed by the review subsystem, which owns the
// public Review record and its rating aggregates.
const reviewRoutingKey = "review.session-completed"

// ReviewBridge hands completed sessions to the review subsystem over
// the broker. The booking core only guarantees completion happened; a
// Review existing afterwards is the review subsystem's problem.
type ReviewBridge struct {
	publisher Publisher
}

func NewReviewBridge(publisher Publisher) *ReviewBridge {
	return &ReviewBridge{publisher: publisher}
}

type reviewRequest struct {
	SessionID    uuid.UUID           `json:"session_id"`
	Participants []uuid.UUID         `json:"participants"`
	Skill        model.SkillSnapshot `json:"skill"`
	CompletedAt  string              `json:"completed_at,omitempty"`
}

func (b *ReviewBridge) RecordCompletion(ctx context.Context, s *model.Session) error {
	req := reviewRequest{
		SessionID:    s.ID,
		Participants: s.Participants(),
		Skill:        s.Skill,
	}
	if s.CompletedAt != nil {
		req.CompletedAt = s.CompletedAt.UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode review request: %w", err)
	}

	if err := b.publisher.Publish(ctx, reviewRoutingKey, body); err != nil {
		return fmt.Errorf("publish review request: %w", err)
	}

	return nil
}
