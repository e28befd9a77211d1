package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/skillswap/skillswap-server/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func conflictFixture() (*ConflictDetector, *memStore) {
	store := newMemStore()
	return NewConflictDetector(store, zap.NewNop()), store
}

func TestCheckConflictsOverlapBoundaries(t *testing.T) {
	detector, store := conflictFixture()
	user := uuid.New()
	other := uuid.New()

	// accepted session tomorrow 10:00-11:00
	tomorrow10 := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	store.put(&model.Session{
		RequesterID: user, ProviderID: other,
		ScheduledAt: tomorrow10, DurationMinutes: 60,
		Status: model.SessionStatusAccepted,
	})

	// candidate 10:30 for 60 minutes overlaps
	report, err := detector.CheckConflicts(context.Background(), user, tomorrow10.Add(30*time.Minute), 60, nil)
	require.NoError(t, err)
	assert.True(t, report.HasConflicts)
	assert.Len(t, report.UserConflicts, 1)

	// candidate 11:00 for 60 minutes is back-to-back, not a conflict
	report, err = detector.CheckConflicts(context.Background(), user, tomorrow10.Add(time.Hour), 60, nil)
	require.NoError(t, err)
	assert.False(t, report.HasConflicts)
	assert.Empty(t, report.UserConflicts)

	// candidate ending exactly at 10:00 is not a conflict either
	report, err = detector.CheckConflicts(context.Background(), user, tomorrow10.Add(-time.Hour), 60, nil)
	require.NoError(t, err)
	assert.False(t, report.HasConflicts)
}

func TestCheckConflictsPendingHoldsSlot(t *testing.T) {
	detector, store := conflictFixture()
	user := uuid.New()
	other := uuid.New()

	start := time.Now().Add(24 * time.Hour)
	store.put(&model.Session{
		RequesterID: other, ProviderID: user,
		ScheduledAt: start, DurationMinutes: 90,
		Status: model.SessionStatusPending,
	})

	report, err := detector.CheckConflicts(context.Background(), user, start.Add(time.Hour), 60, nil)
	require.NoError(t, err)
	assert.True(t, report.HasConflicts)
}

func TestCheckConflictsIgnoresSettledSessions(t *testing.T) {
	detector, store := conflictFixture()
	user := uuid.New()
	other := uuid.New()

	start := time.Now().Add(24 * time.Hour)
	for _, status := range []model.SessionStatus{
		model.SessionStatusRejected,
		model.SessionStatusCancelled,
		model.SessionStatusCompleted,
		model.SessionStatusNoShow,
	} {
		store.put(&model.Session{
			RequesterID: user, ProviderID: other,
			ScheduledAt: start, DurationMinutes: 60,
			Status: status,
		})
	}

	report, err := detector.CheckConflicts(context.Background(), user, start, 60, nil)
	require.NoError(t, err)
	assert.False(t, report.HasConflicts)
}

func TestCheckConflictsSeparatesCounterpart(t *testing.T) {
	detector, store := conflictFixture()
	user := uuid.New()
	counterpart := uuid.New()
	other := uuid.New()

	start := time.Now().Add(24 * time.Hour)

	// only the counterpart is double-booked
	store.put(&model.Session{
		RequesterID: counterpart, ProviderID: other,
		ScheduledAt: start, DurationMinutes: 60,
		Status: model.SessionStatusAccepted,
	})

	report, err := detector.CheckConflicts(context.Background(), user, start, 60, &counterpart)
	require.NoError(t, err)
	assert.True(t, report.HasConflicts)
	assert.Empty(t, report.UserConflicts)
	assert.Len(t, report.CounterpartConflicts, 1)

	// without the counterpart the same check is clean
	report, err = detector.CheckConflicts(context.Background(), user, start, 60, nil)
	require.NoError(t, err)
	assert.False(t, report.HasConflicts)
}

func TestCheckConflictsValidatesDuration(t *testing.T) {
	detector, _ := conflictFixture()

	_, err := detector.CheckConflicts(context.Background(), uuid.New(), time.Now().Add(time.Hour), 5, nil)
	require.Error(t, err)
	assert.Equal(t, model.KindValidation, model.KindOf(err))

	_, err = detector.CheckConflicts(context.Background(), uuid.New(), time.Now().Add(time.Hour), 500, nil)
	require.Error(t, err)
	assert.Equal(t, model.KindValidation, model.KindOf(err))
}
