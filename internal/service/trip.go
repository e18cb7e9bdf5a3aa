package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	base
}

// NewTripService constructs a TripService backed by the provided Store.
func NewTripService(store repo.Store, opts ...Option) *TripService {
	return &TripService{base: newBase(store, opts)}
}

// Create persists a new trip organized by caller, together with the
// organizer's own participant row.
func (s *TripService) Create(ctx context.Context, caller uuid.UUID, name string) (domain.Trip, error) {
	name, err := cleanName("name", name)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	if caller == uuid.Nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: caller is required", domain.ErrValidation)
	}

	var trip domain.Trip
	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		var err error
		trip, err = r.Trips.Create(ctx, domain.Trip{Name: name, OrganizerID: caller})
		if err != nil {
			return err
		}
		_, _, err = addReal(ctx, r, trip.ID, caller)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return trip, nil
}

// GetByID returns a trip the caller belongs to.
func (s *TripService) GetByID(ctx context.Context, tripID, caller uuid.UUID) (domain.Trip, error) {
	var trip domain.Trip
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		a, err := authorize(ctx, r, tripID, caller, domain.RoleMember)
		trip = a.trip
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// ListForUser returns one page of the trips the caller organizes or
// participates in, and the total across all pages.
func (s *TripService) ListForUser(ctx context.Context, caller uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	var (
		trips []domain.Trip
		total int64
	)
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		var err error
		trips, total, err = r.Trips.ListByUser(ctx, caller, p)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListForUser: %w", err)
	}
	return trips, total, nil
}

// Delete removes a trip and everything in it. Organizer only.
func (s *TripService) Delete(ctx context.Context, tripID, caller uuid.UUID) error {
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleOrganizer); err != nil {
			return err
		}
		return r.Trips.Delete(ctx, tripID)
	})
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}
