// Package domain contains the core data types for the trip planner.
// This package depends only on uuid and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is the top-level aggregate. Participants, proposals, votes and gear
// assignments all belong to a trip.
type Trip struct {
	ID          uuid.UUID
	Name        string
	OrganizerID uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// User is the profile of an authenticated account, as far as the engine
// needs it: the display name used when a user joins a trip.
type User struct {
	ID          uuid.UUID
	DisplayName string
}
