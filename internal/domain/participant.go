package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDisplayName is used for real participants whose profile has no name.
const DefaultDisplayName = "Traveller"

// Participant is a member of a trip. A placeholder has no linked user until
// it is claimed; claiming links a user and never reverts.
//
// ID is the stable key referenced by votes and gear assignments. It survives
// a claim unchanged.
type Participant struct {
	ID            uuid.UUID
	TripID        uuid.UUID
	UserID        *uuid.UUID // nil for placeholders
	DisplayName   string
	IsPlaceholder bool
	ClaimedAt     *time.Time // set once when a placeholder is claimed
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
}

// IsUser reports whether p is linked to userID.
func (p Participant) IsUser(userID uuid.UUID) bool {
	return p.UserID != nil && *p.UserID == userID
}
