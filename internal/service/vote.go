package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// VoteService records votes on date options, destinations and term
// proposals. Casting twice and retracting a missing vote both succeed.
type VoteService struct {
	base
}

// NewVoteService constructs a VoteService backed by the provided Store.
func NewVoteService(store repo.Store, opts ...Option) *VoteService {
	return &VoteService{base: newBase(store, opts)}
}

// CastSelf votes for an option as the caller's own participant.
func (s *VoteService) CastSelf(ctx context.Context, kind domain.VoteKind, tripID, optionID, caller uuid.UUID) error {
	err := s.self(ctx, kind, tripID, optionID, caller, func(r repo.Repos, pid uuid.UUID) error {
		_, err := r.Votes.Add(ctx, kind, optionID, pid)
		return err
	})
	if err != nil {
		return fmt.Errorf("service.VoteService.CastSelf: %w", err)
	}
	return nil
}

// RetractSelf removes the caller's own vote.
func (s *VoteService) RetractSelf(ctx context.Context, kind domain.VoteKind, tripID, optionID, caller uuid.UUID) error {
	err := s.self(ctx, kind, tripID, optionID, caller, func(r repo.Repos, pid uuid.UUID) error {
		_, err := r.Votes.Remove(ctx, kind, optionID, pid)
		return err
	})
	if err != nil {
		return fmt.Errorf("service.VoteService.RetractSelf: %w", err)
	}
	return nil
}

// CastProxy votes for an option on behalf of a placeholder. Participants
// linked to a user vote for themselves, so targeting one is forbidden.
func (s *VoteService) CastProxy(ctx context.Context, kind domain.VoteKind, tripID, optionID, caller, participantID uuid.UUID) error {
	err := s.proxy(ctx, kind, tripID, optionID, caller, participantID, func(r repo.Repos) error {
		_, err := r.Votes.Add(ctx, kind, optionID, participantID)
		return err
	})
	if err != nil {
		return fmt.Errorf("service.VoteService.CastProxy: %w", err)
	}
	return nil
}

// RetractProxy removes a placeholder's vote.
func (s *VoteService) RetractProxy(ctx context.Context, kind domain.VoteKind, tripID, optionID, caller, participantID uuid.UUID) error {
	err := s.proxy(ctx, kind, tripID, optionID, caller, participantID, func(r repo.Repos) error {
		_, err := r.Votes.Remove(ctx, kind, optionID, participantID)
		return err
	})
	if err != nil {
		return fmt.Errorf("service.VoteService.RetractProxy: %w", err)
	}
	return nil
}

func (s *VoteService) self(ctx context.Context, kind domain.VoteKind, tripID, optionID, caller uuid.UUID, fn func(repo.Repos, uuid.UUID) error) error {
	if err := validVoteKind(kind); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(r repo.Repos) error {
		a, err := authorize(ctx, r, tripID, caller, domain.RoleMember)
		if err != nil {
			return err
		}
		if a.participant == nil {
			return fmt.Errorf("%w: caller has no participant row", domain.ErrForbidden)
		}
		if _, err := r.Proposals.GetByID(ctx, kind.ProposalKind(), tripID, optionID); err != nil {
			return err
		}
		return fn(r, a.participant.ID)
	})
}

func (s *VoteService) proxy(ctx context.Context, kind domain.VoteKind, tripID, optionID, caller, participantID uuid.UUID, fn func(repo.Repos) error) error {
	if err := validVoteKind(kind); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleMember); err != nil {
			return err
		}
		target, err := r.Participants.GetByID(ctx, tripID, participantID)
		if err != nil {
			return err
		}
		if !target.IsPlaceholder {
			return fmt.Errorf("%w: proxy votes are only allowed for placeholders", domain.ErrForbidden)
		}
		if _, err := r.Proposals.GetByID(ctx, kind.ProposalKind(), tripID, optionID); err != nil {
			return err
		}
		return fn(r)
	})
}

func validVoteKind(kind domain.VoteKind) error {
	if kind.ProposalKind() == "" {
		return fmt.Errorf("%w: unknown vote kind %q", domain.ErrValidation, kind)
	}
	return nil
}
