package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// createTrip inserts a trip organized by a fresh user and returns both.
func createTrip(t *testing.T, r repo.Repos) (domain.Trip, uuid.UUID) {
	t.Helper()
	organizer := uuid.New()
	trip, err := r.Trips.Create(context.Background(), domain.Trip{Name: "Summer Tour", OrganizerID: organizer})
	require.NoError(t, err)
	return trip, organizer
}

func TestTripRepo_Create(t *testing.T) {
	r := newTestRepos(t)

	got, organizer := createTrip(t, r)

	assert.NotEqual(t, uuid.Nil, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, "Summer Tour", got.Name)
	assert.Equal(t, organizer, got.OrganizerID)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
	assert.False(t, got.UpdatedAt.IsZero(), "UpdatedAt should be set by DB")
}

func TestTripRepo_GetByID_and_Lock(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	created, _ := createTrip(t, r)

	got, err := r.Trips.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	locked, err := r.Trips.Lock(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, locked.ID)
}

func TestTripRepo_GetByID_NotFound(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.Trips.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_ListByUser_IncludesParticipation(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip, organizer := createTrip(t, r)
	member := uuid.New()
	_, _, err := r.Participants.EnsureUser(ctx, domain.Participant{TripID: trip.ID, UserID: &member, DisplayName: "Ana", CreatedBy: member})
	require.NoError(t, err)

	page := domain.NewPaginationParams(nil, nil)

	mine, total, err := r.Trips.ListByUser(ctx, organizer, page)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), total)

	theirs, _, err := r.Trips.ListByUser(ctx, member, page)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, trip.ID, theirs[0].ID)

	none, total, err := r.Trips.ListByUser(ctx, uuid.New(), page)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Zero(t, total)
}

func TestTripRepo_ListByUser_Paged(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	organizer := uuid.New()
	for i := 0; i < 3; i++ {
		_, err := r.Trips.Create(ctx, domain.Trip{Name: "Trip", OrganizerID: organizer})
		require.NoError(t, err)
	}

	first, total, err := r.Trips.ListByUser(ctx, organizer, domain.PaginationParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, first, 2)

	second, total, err := r.Trips.ListByUser(ctx, organizer, domain.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, second, 1)
	for _, trip := range first {
		assert.NotEqual(t, trip.ID, second[0].ID, "pages do not overlap")
	}
}

func TestTripRepo_Delete_Cascades(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip, organizer := createTrip(t, r)
	_, _, err := r.Participants.EnsureUser(ctx, domain.Participant{TripID: trip.ID, UserID: &organizer, DisplayName: "Org", CreatedBy: organizer})
	require.NoError(t, err)

	require.NoError(t, r.Trips.Delete(ctx, trip.ID))

	list, err := r.Participants.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.ErrorIs(t, r.Trips.Delete(ctx, trip.ID), domain.ErrNotFound)
}
