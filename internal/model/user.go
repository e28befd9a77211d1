package model

import "github.com/google/uuid"

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

// DirectoryUser is the slice of a marketplace user this core needs:
// enough to check that a booking party exists and is active. Profile
// data lives with the user subsystem.
type DirectoryUser struct {
	ID     uuid.UUID  `json:"id"`
	Status UserStatus `json:"status"`
	Role   string     `json:"role"`
}

// Active reports whether the user may participate in bookings.
func (u *DirectoryUser) Active() bool {
	return u.Status == UserStatusActive
}
