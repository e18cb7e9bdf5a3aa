package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProposalKind identifies one of the sibling lists a trip can vote or decide on.
type ProposalKind string

const (
	KindDateOption     ProposalKind = "date_option"
	KindDestination    ProposalKind = "destination"
	KindTransportation ProposalKind = "transportation"
	KindTerm           ProposalKind = "term"
)

// ProposalKinds lists every kind in a stable order.
var ProposalKinds = []ProposalKind{KindDateOption, KindDestination, KindTransportation, KindTerm}

// ParseProposalKind validates s as a ProposalKind.
func ParseProposalKind(s string) (ProposalKind, error) {
	for _, k := range ProposalKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown proposal kind %q", ErrValidation, s)
}

// Exclusive reports whether at most one proposal of this kind may be chosen
// per trip. Date options are voted on but never chosen.
func (k ProposalKind) Exclusive() bool {
	return k != KindDateOption && k != ""
}

// VoteKind returns the vote ledger used for this kind, and false when the
// kind is not votable (transportations).
func (k ProposalKind) VoteKind() (VoteKind, bool) {
	switch k {
	case KindDateOption:
		return VoteDate, true
	case KindDestination:
		return VoteDestination, true
	case KindTerm:
		return VoteTerm, true
	}
	return "", false
}

// Proposal is a date option, destination, transportation or term proposal.
// IsChosen is always false for date options.
type Proposal struct {
	ID        uuid.UUID
	Kind      ProposalKind
	TripID    uuid.UUID
	Title     string
	IsChosen  bool
	CreatedBy uuid.UUID
	CreatedAt time.Time
}
