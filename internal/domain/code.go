package domain

import (
	"time"

	"github.com/google/uuid"
)

// InviteCode is a multi-use, expiring, revocable code that lets anyone who
// holds it join a trip as themselves. Only the hash of the code is stored.
type InviteCode struct {
	ID        uuid.UUID
	TripID    uuid.UUID
	CodeHash  string
	ExpiresAt time.Time
	MaxUses   int
	Uses      int
	CreatedBy uuid.UUID
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Usable reports whether the invite can still be redeemed at now.
func (c InviteCode) Usable(now time.Time) bool {
	return c.RevokedAt == nil && now.Before(c.ExpiresAt) && c.Uses < c.MaxUses
}

// PlaceholderClaim is a one-time code bound to a single placeholder
// participant. Redeeming it revokes it whatever happens afterwards.
type PlaceholderClaim struct {
	ID            uuid.UUID
	TripID        uuid.UUID
	ParticipantID uuid.UUID
	CodeHash      string
	ExpiresAt     time.Time
	CreatedBy     uuid.UUID
	RevokedAt     *time.Time
	CreatedAt     time.Time
}

// Usable reports whether the claim is unrevoked and unexpired at now.
// Whether the target is still a placeholder is checked by the caller, since
// it lives on a different row.
func (c PlaceholderClaim) Usable(now time.Time) bool {
	return c.RevokedAt == nil && now.Before(c.ExpiresAt)
}
