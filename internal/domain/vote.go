package domain

import (
	"time"

	"github.com/google/uuid"
)

// VoteKind names one of the three parallel vote ledgers.
type VoteKind string

const (
	VoteDate        VoteKind = "date"
	VoteDestination VoteKind = "destination"
	VoteTerm        VoteKind = "term"
)

// VoteKinds lists every vote ledger.
var VoteKinds = []VoteKind{VoteDate, VoteDestination, VoteTerm}

// ProposalKind returns the proposal kind the ledger's options belong to.
func (k VoteKind) ProposalKind() ProposalKind {
	switch k {
	case VoteDate:
		return KindDateOption
	case VoteDestination:
		return KindDestination
	case VoteTerm:
		return KindTerm
	}
	return ""
}

// Vote records that a participant supports an option. There is at most one
// vote per (option, participant).
type Vote struct {
	ID            uuid.UUID
	Kind          VoteKind
	OptionID      uuid.UUID
	ParticipantID uuid.UUID
	CreatedAt     time.Time
}

// GearAssignment puts a participant in charge of a gear checklist item.
// Unique per (trip, item, participant).
type GearAssignment struct {
	ID            uuid.UUID
	TripID        uuid.UUID
	Item          string
	ParticipantID uuid.UUID
	CreatedAt     time.Time
}

// TallyRow summarises the votes on one proposal for presentation.
type TallyRow struct {
	ProposalID uuid.UUID
	Kind       ProposalKind
	Title      string
	IsChosen   bool
	Votes      int
	Voters     []string // display names, sorted
}
