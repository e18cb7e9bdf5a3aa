package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// ParticipantService is the authoritative directory of trip members.
type ParticipantService struct {
	base
}

// NewParticipantService constructs a ParticipantService backed by the provided Store.
func NewParticipantService(store repo.Store, opts ...Option) *ParticipantService {
	return &ParticipantService{base: newBase(store, opts)}
}

// AddReal returns the user's participant row in the trip, creating it if
// needed. Calling it again for the same user returns the same row with
// created false. The display name comes from the user's profile.
func (s *ParticipantService) AddReal(ctx context.Context, tripID, userID uuid.UUID) (domain.Participant, bool, error) {
	var (
		p       domain.Participant
		created bool
	)
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		var err error
		p, created, err = addReal(ctx, r, tripID, userID)
		return err
	})
	if err != nil {
		return domain.Participant{}, false, fmt.Errorf("service.ParticipantService.AddReal: %w", err)
	}
	return p, created, nil
}

// AddPlaceholder creates a named stand-in for someone who has not joined yet.
// A blank name becomes "Guest N".
func (s *ParticipantService) AddPlaceholder(ctx context.Context, tripID, caller uuid.UUID, displayName string) (domain.Participant, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName != "" {
		var err error
		if displayName, err = cleanName("display name", displayName); err != nil {
			return domain.Participant{}, fmt.Errorf("service.ParticipantService.AddPlaceholder: %w", err)
		}
	}

	var p domain.Participant
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleMember); err != nil {
			return err
		}
		if displayName == "" {
			n, err := r.Participants.CountPlaceholders(ctx, tripID)
			if err != nil {
				return err
			}
			displayName = fmt.Sprintf("Guest %d", n+1)
		}
		var err error
		p, err = r.Participants.Create(ctx, domain.Participant{
			TripID:        tripID,
			DisplayName:   displayName,
			IsPlaceholder: true,
			CreatedBy:     caller,
		})
		return err
	})
	if err != nil {
		return domain.Participant{}, fmt.Errorf("service.ParticipantService.AddPlaceholder: %w", err)
	}
	return p, nil
}

// Rename changes a placeholder's name. Real participants can only be renamed
// by themselves through RenameSelf.
func (s *ParticipantService) Rename(ctx context.Context, tripID, caller, participantID uuid.UUID, name string) (domain.Participant, error) {
	name, err := cleanName("display name", name)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("service.ParticipantService.Rename: %w", err)
	}

	var p domain.Participant
	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleMember); err != nil {
			return err
		}
		target, err := r.Participants.GetByID(ctx, tripID, participantID)
		if err != nil {
			return err
		}
		if !target.IsPlaceholder {
			return fmt.Errorf("%w: only placeholders can be renamed by others", domain.ErrForbidden)
		}
		p, err = r.Participants.UpdateName(ctx, tripID, participantID, name)
		return err
	})
	if err != nil {
		return domain.Participant{}, fmt.Errorf("service.ParticipantService.Rename: %w", err)
	}
	return p, nil
}

// RenameSelf changes the caller's own display name in the trip.
func (s *ParticipantService) RenameSelf(ctx context.Context, tripID, caller uuid.UUID, name string) (domain.Participant, error) {
	name, err := cleanName("display name", name)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("service.ParticipantService.RenameSelf: %w", err)
	}

	var p domain.Participant
	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		a, err := authorize(ctx, r, tripID, caller, domain.RoleMember)
		if err != nil {
			return err
		}
		if a.participant == nil {
			return fmt.Errorf("%w: caller has no participant row", domain.ErrForbidden)
		}
		p, err = r.Participants.UpdateName(ctx, tripID, a.participant.ID, name)
		return err
	})
	if err != nil {
		return domain.Participant{}, fmt.Errorf("service.ParticipantService.RenameSelf: %w", err)
	}
	return p, nil
}

// Remove deletes a participant with their votes and gear assignments.
// Organizer only, and never the organizer's own row.
func (s *ParticipantService) Remove(ctx context.Context, tripID, caller, participantID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		a, err := authorize(ctx, r, tripID, caller, domain.RoleOrganizer)
		if err != nil {
			return err
		}
		target, err := r.Participants.GetByID(ctx, tripID, participantID)
		if err != nil {
			return err
		}
		if target.IsUser(a.trip.OrganizerID) {
			return fmt.Errorf("%w: the organizer cannot be removed", domain.ErrForbidden)
		}
		return r.Participants.Delete(ctx, tripID, participantID)
	})
	if err != nil {
		return fmt.Errorf("service.ParticipantService.Remove: %w", err)
	}
	return nil
}

// List returns the trip's participants in creation order.
func (s *ParticipantService) List(ctx context.Context, tripID, caller uuid.UUID) ([]domain.Participant, error) {
	var out []domain.Participant
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleMember); err != nil {
			return err
		}
		var err error
		out, err = r.Participants.ListByTrip(ctx, tripID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.ParticipantService.List: %w", err)
	}
	return out, nil
}
