package domain

import "github.com/google/uuid"

// Role is the caller's relationship to a trip.
type Role int

const (
	RoleNone Role = iota
	RoleMember
	RoleOrganizer
)

func (r Role) String() string {
	switch r {
	case RoleOrganizer:
		return "organizer"
	case RoleMember:
		return "member"
	}
	return "none"
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool { return r >= min }

// RoleFor is the single authorization predicate for trip operations.
// The organizer outranks membership whether or not they hold a participant row.
func RoleFor(trip Trip, caller uuid.UUID, hasParticipant bool) Role {
	switch {
	case caller == uuid.Nil:
		return RoleNone
	case trip.OrganizerID == caller:
		return RoleOrganizer
	case hasParticipant:
		return RoleMember
	}
	return RoleNone
}
