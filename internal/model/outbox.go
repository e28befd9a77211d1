package model

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEntry is a session event whose broker publish failed and is
// waiting for the retry scheduler to pick it up.
type OutboxEntry struct {
	ID            uuid.UUID `json:"id"`
	Event         string    `json:"event"`
	Payload       []byte    `json:"payload"`
	Attempts      int       `json:"attempts"`
	NextAttemptAt time.Time `json:"next_attempt_at"`
	CreatedAt     time.Time `json:"created_at"`
}
