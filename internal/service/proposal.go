package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// ProposalService manages the date options, destinations, transportations
// and term proposals of a trip.
type ProposalService struct {
	base
}

// NewProposalService constructs a ProposalService backed by the provided Store.
func NewProposalService(store repo.Store, opts ...Option) *ProposalService {
	return &ProposalService{base: newBase(store, opts)}
}

// Create adds a proposal. Any member may propose.
func (s *ProposalService) Create(ctx context.Context, kind domain.ProposalKind, tripID, caller uuid.UUID, title string) (domain.Proposal, error) {
	if _, err := domain.ParseProposalKind(string(kind)); err != nil {
		return domain.Proposal{}, fmt.Errorf("service.ProposalService.Create: %w", err)
	}
	title, err := cleanName("title", title)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("service.ProposalService.Create: %w", err)
	}

	var p domain.Proposal
	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleMember); err != nil {
			return err
		}
		var err error
		p, err = r.Proposals.Create(ctx, domain.Proposal{Kind: kind, TripID: tripID, Title: title, CreatedBy: caller})
		return err
	})
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("service.ProposalService.Create: %w", err)
	}
	return p, nil
}

// List returns the trip's proposals of one kind in creation order.
func (s *ProposalService) List(ctx context.Context, kind domain.ProposalKind, tripID, caller uuid.UUID) ([]domain.Proposal, error) {
	if _, err := domain.ParseProposalKind(string(kind)); err != nil {
		return nil, fmt.Errorf("service.ProposalService.List: %w", err)
	}
	var out []domain.Proposal
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleMember); err != nil {
			return err
		}
		var err error
		out, err = r.Proposals.ListByTrip(ctx, kind, tripID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.ProposalService.List: %w", err)
	}
	return out, nil
}

// Delete removes a proposal and its votes. Organizer only.
func (s *ProposalService) Delete(ctx context.Context, kind domain.ProposalKind, tripID, caller, proposalID uuid.UUID) error {
	if _, err := domain.ParseProposalKind(string(kind)); err != nil {
		return fmt.Errorf("service.ProposalService.Delete: %w", err)
	}
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleOrganizer); err != nil {
			return err
		}
		return r.Proposals.Delete(ctx, kind, tripID, proposalID)
	})
	if err != nil {
		return fmt.Errorf("service.ProposalService.Delete: %w", err)
	}
	return nil
}
