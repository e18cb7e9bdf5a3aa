package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

func TestGearService_AssignUnassign(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	trip, organizer := e.newTrip(t)
	guest := e.placeholder(t, trip.ID, organizer, "")

	first, err := e.gear.Assign(ctx, trip.ID, organizer, guest.ID, " tent ")
	require.NoError(t, err)
	assert.Equal(t, "tent", first.Item)

	again, err := e.gear.Assign(ctx, trip.ID, organizer, guest.ID, "tent")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "assigning twice returns the existing row")

	_, err = e.gear.Assign(ctx, trip.ID, organizer, guest.ID, "stove")
	require.NoError(t, err)

	list, err := e.gear.List(ctx, trip.ID, organizer)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "stove", list[0].Item)
	assert.Equal(t, "tent", list[1].Item)

	require.NoError(t, e.gear.Unassign(ctx, trip.ID, organizer, guest.ID, "tent"))
	require.NoError(t, e.gear.Unassign(ctx, trip.ID, organizer, guest.ID, "tent"))

	list, err = e.gear.List(ctx, trip.ID, organizer)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGearService_Assign_Errors(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	trip, organizer := e.newTrip(t)
	guest := e.placeholder(t, trip.ID, organizer, "")

	_, err := e.gear.Assign(ctx, trip.ID, organizer, guest.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.gear.Assign(ctx, trip.ID, organizer, uuid.New(), "tent")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.gear.Assign(ctx, trip.ID, uuid.New(), guest.ID, "tent")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
