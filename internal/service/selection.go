package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// SelectionService picks the single chosen destination, transportation or
// term proposal of a trip.
type SelectionService struct {
	base
}

// NewSelectionService constructs a SelectionService backed by the provided Store.
func NewSelectionService(store repo.Store, opts ...Option) *SelectionService {
	return &SelectionService{base: newBase(store, opts)}
}

// Choose marks proposalID as chosen and unsets its siblings in one
// transaction that holds the trip lock, so concurrent calls end with exactly
// one chosen proposal. Organizer only.
func (s *SelectionService) Choose(ctx context.Context, kind domain.ProposalKind, tripID, caller, proposalID uuid.UUID) error {
	err := s.locked(ctx, kind, tripID, caller, func(r repo.Repos) error {
		return r.Proposals.Choose(ctx, kind, tripID, proposalID)
	})
	if err != nil {
		return fmt.Errorf("service.SelectionService.Choose: %w", err)
	}
	return nil
}

// Unchoose clears the selection on proposalID. Organizer only.
func (s *SelectionService) Unchoose(ctx context.Context, kind domain.ProposalKind, tripID, caller, proposalID uuid.UUID) error {
	err := s.locked(ctx, kind, tripID, caller, func(r repo.Repos) error {
		return r.Proposals.Unchoose(ctx, kind, tripID, proposalID)
	})
	if err != nil {
		return fmt.Errorf("service.SelectionService.Unchoose: %w", err)
	}
	return nil
}

func (s *SelectionService) locked(ctx context.Context, kind domain.ProposalKind, tripID, caller uuid.UUID, fn func(repo.Repos) error) error {
	if !kind.Exclusive() {
		return fmt.Errorf("%w: %q proposals cannot be chosen", domain.ErrValidation, kind)
	}
	if _, err := domain.ParseProposalKind(string(kind)); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(r repo.Repos) error {
		trip, err := r.Trips.Lock(ctx, tripID)
		if err != nil {
			return err
		}
		if _, err := resolve(ctx, r, trip, caller, domain.RoleOrganizer); err != nil {
			return err
		}
		return fn(r)
	})
}
