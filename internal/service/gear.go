package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// GearService manages who brings which checklist item.
type GearService struct {
	base
}

// NewGearService constructs a GearService backed by the provided Store.
func NewGearService(store repo.Store, opts ...Option) *GearService {
	return &GearService{base: newBase(store, opts)}
}

// Assign puts a participant in charge of item. Assigning twice returns the
// existing assignment.
func (s *GearService) Assign(ctx context.Context, tripID, caller, participantID uuid.UUID, item string) (domain.GearAssignment, error) {
	item, err := cleanName("item", item)
	if err != nil {
		return domain.GearAssignment{}, fmt.Errorf("service.GearService.Assign: %w", err)
	}

	var g domain.GearAssignment
	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleMember); err != nil {
			return err
		}
		if _, err := r.Participants.GetByID(ctx, tripID, participantID); err != nil {
			return err
		}
		var err error
		g, _, err = r.Gear.Assign(ctx, domain.GearAssignment{TripID: tripID, Item: item, ParticipantID: participantID})
		return err
	})
	if err != nil {
		return domain.GearAssignment{}, fmt.Errorf("service.GearService.Assign: %w", err)
	}
	return g, nil
}

// Unassign removes an assignment. Removing a missing one succeeds.
func (s *GearService) Unassign(ctx context.Context, tripID, caller, participantID uuid.UUID, item string) error {
	item, err := cleanName("item", item)
	if err != nil {
		return fmt.Errorf("service.GearService.Unassign: %w", err)
	}
	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleMember); err != nil {
			return err
		}
		_, err := r.Gear.Unassign(ctx, tripID, participantID, item)
		return err
	})
	if err != nil {
		return fmt.Errorf("service.GearService.Unassign: %w", err)
	}
	return nil
}

// List returns the trip's assignments ordered by item.
func (s *GearService) List(ctx context.Context, tripID, caller uuid.UUID) ([]domain.GearAssignment, error) {
	var out []domain.GearAssignment
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleMember); err != nil {
			return err
		}
		var err error
		out, err = r.Gear.ListByTrip(ctx, tripID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.GearService.List: %w", err)
	}
	return out, nil
}
