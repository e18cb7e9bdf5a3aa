package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// TallyService summarises a trip's proposals and votes.
type TallyService struct {
	base
}

// NewTallyService constructs a TallyService backed by the provided Store.
func NewTallyService(store repo.Store, opts ...Option) *TallyService {
	return &TallyService{base: newBase(store, opts)}
}

// Tally returns one row per proposal, grouped by kind in domain.ProposalKinds
// order and by creation time within a kind. Transportations are listed with
// zero votes since they are chosen, not voted on.
func (s *TallyService) Tally(ctx context.Context, tripID, caller uuid.UUID) ([]domain.TallyRow, error) {
	rows := []domain.TallyRow{}
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleMember); err != nil {
			return err
		}
		participants, err := r.Participants.ListByTrip(ctx, tripID)
		if err != nil {
			return err
		}
		names := make(map[uuid.UUID]string, len(participants))
		for _, p := range participants {
			names[p.ID] = p.DisplayName
		}

		for _, kind := range domain.ProposalKinds {
			proposals, err := r.Proposals.ListByTrip(ctx, kind, tripID)
			if err != nil {
				return err
			}
			voters := map[uuid.UUID][]string{}
			if vk, ok := kind.VoteKind(); ok {
				votes, err := r.Votes.ListByTrip(ctx, vk, tripID)
				if err != nil {
					return err
				}
				for _, v := range votes {
					voters[v.OptionID] = append(voters[v.OptionID], names[v.ParticipantID])
				}
			}
			for _, p := range proposals {
				who := voters[p.ID]
				if who == nil {
					who = []string{}
				}
				sort.Strings(who)
				rows = append(rows, domain.TallyRow{
					ProposalID: p.ID,
					Kind:       kind,
					Title:      p.Title,
					IsChosen:   p.IsChosen,
					Votes:      len(who),
					Voters:     who,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.TallyService.Tally: %w", err)
	}
	return rows, nil
}
