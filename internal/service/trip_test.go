package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

func TestTripService_Create_AddsOrganizerParticipant(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	organizer := uuid.New()
	require.NoError(t, e.users.Remember(ctx, organizer, "Olga"))

	trip, err := e.trips.Create(ctx, organizer, "  Alps  ")
	require.NoError(t, err)
	assert.Equal(t, "Alps", trip.Name)
	assert.Equal(t, organizer, trip.OrganizerID)

	list, err := e.participants.List(ctx, trip.ID, organizer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsUser(organizer))
	assert.Equal(t, "Olga", list[0].DisplayName)
}

func TestTripService_Create_MissingName(t *testing.T) {
	e := newEngine(t)

	_, err := e.trips.Create(context.Background(), uuid.New(), "   ")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_GetByID(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	trip, organizer := e.newTrip(t)
	_, member := e.join(t, trip.ID, "Max")

	got, err := e.trips.GetByID(ctx, trip.ID, organizer)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, got.ID)

	_, err = e.trips.GetByID(ctx, trip.ID, member)
	require.NoError(t, err)

	_, err = e.trips.GetByID(ctx, trip.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.trips.GetByID(ctx, uuid.New(), organizer)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_ListForUser(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	first, organizer := e.newTrip(t)
	_, member := e.join(t, first.ID, "Max")
	_, _ = e.newTrip(t)

	page := domain.NewPaginationParams(nil, nil)

	mine, total, err := e.trips.ListForUser(ctx, organizer, page)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, first.ID, mine[0].ID)

	theirs, _, err := e.trips.ListForUser(ctx, member, page)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)

	none, total, err := e.trips.ListForUser(ctx, uuid.New(), page)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Zero(t, total)
}

func TestTripService_ListForUser_Pages(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	organizer := uuid.New()
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		trip, err := e.trips.Create(ctx, organizer, fmt.Sprintf("Trip %d", i))
		require.NoError(t, err)
		ids = append(ids, trip.ID)
		e.clock.Advance(time.Minute)
	}

	second, total, err := e.trips.ListForUser(ctx, organizer, domain.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, second, 2)
	// Newest first: page 2 holds the third and second newest trips.
	assert.Equal(t, ids[2], second[0].ID)
	assert.Equal(t, ids[1], second[1].ID)

	past, total, err := e.trips.ListForUser(ctx, organizer, domain.PaginationParams{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, past)
}

func TestTripService_Delete_OrganizerOnly(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	trip, organizer := e.newTrip(t)
	_, member := e.join(t, trip.ID, "Max")

	err := e.trips.Delete(ctx, trip.ID, member)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, e.trips.Delete(ctx, trip.ID, organizer))

	_, err = e.trips.GetByID(ctx, trip.ID, organizer)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_Create_StoreError(t *testing.T) {
	dbErr := errors.New("connection refused")
	store := &mockStore{
		withTx: func(_ context.Context, _ func(repo.Repos) error) error { return dbErr },
	}
	svc := service.NewTripService(store)

	_, err := svc.Create(context.Background(), uuid.New(), "Alps")

	assert.ErrorIs(t, err, dbErr)
}
