package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/skillswap/skillswap-server/internal/model"
	"go.uber.org/zap"
)

// slotHoldingStatuses are the statuses that count toward double-
// booking. Pending requests hold the slot too: the warning matters
// most in the window before the provider accepts.
var slotHoldingStatuses = []model.SessionStatus{
	model.SessionStatusPending,
	model.SessionStatusAccepted,
}

// ConflictDetector answers the advisory "am I double-booked" query.
// It never blocks a booking and tolerates reading data that is stale
// relative to an in-flight creation.
type ConflictDetector struct {
	store  SessionStore
	logger *zap.Logger
}

func NewConflictDetector(store SessionStore, logger *zap.Logger) *ConflictDetector {
	return &ConflictDetector{store: store, logger: logger}
}

// CheckConflicts reports which of the user's (and optionally the
// counterpart's) slot-holding sessions overlap the candidate interval
// [start, start+duration). Back-to-back sessions are not conflicts.
func (d *ConflictDetector) CheckConflicts(
	ctx context.Context,
	userID uuid.UUID,
	start time.Time,
	durationMinutes int,
	counterpartID *uuid.UUID,
) (*model.ConflictReport, error) {
	if durationMinutes < model.MinDurationMinutes || durationMinutes > model.MaxDurationMinutes {
		return nil, model.NewValidationError(fmt.Sprintf(
			"duration must be between %d and %d minutes",
			model.MinDurationMinutes, model.MaxDurationMinutes,
		))
	}

	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	userConflicts, err := d.overlapping(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	report := &model.ConflictReport{UserConflicts: userConflicts}

	if counterpartID != nil {
		counterpartConflicts, err := d.overlapping(ctx, *counterpartID, start, end)
		if err != nil {
			return nil, err
		}
		report.CounterpartConflicts = counterpartConflicts
	}

	report.HasConflicts = len(report.UserConflicts) > 0 || len(report.CounterpartConflicts) > 0

	if report.HasConflicts {
		d.logger.Debug("Conflicts detected",
			zap.String("user_id", userID.String()),
			zap.Time("start", start),
			zap.Int("duration_minutes", durationMinutes),
			zap.Int("user_conflicts", len(report.UserConflicts)),
			zap.Int("counterpart_conflicts", len(report.CounterpartConflicts)),
		)
	}

	return report, nil
}

func (d *ConflictDetector) overlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*model.Session, error) {
	sessions, err := d.store.ListSlotHolding(ctx, userID, slotHoldingStatuses)
	if err != nil {
		return nil, fmt.Errorf("list slot-holding sessions: %w", err)
	}

	var conflicts []*model.Session
	for _, s := range sessions {
		if s.Overlaps(start, end) {
			conflicts = append(conflicts, s)
		}
	}

	return conflicts, nil
}
