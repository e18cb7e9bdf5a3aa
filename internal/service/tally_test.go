package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

func TestTallyService_Tally(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	trip, organizer := e.newTrip(t)
	_, maxUser := e.join(t, trip.ID, "Max")
	_, annUser := e.join(t, trip.ID, "Ann")
	guest := e.placeholder(t, trip.ID, organizer, "Grandma")

	date := e.propose(t, domain.KindDateOption, trip.ID, organizer, "June 1-7")
	dest := e.propose(t, domain.KindDestination, trip.ID, organizer, "Zermatt")
	bus := e.propose(t, domain.KindTransportation, trip.ID, organizer, "Bus")

	require.NoError(t, e.votes.CastSelf(ctx, domain.VoteDate, trip.ID, date.ID, maxUser))
	require.NoError(t, e.votes.CastSelf(ctx, domain.VoteDate, trip.ID, date.ID, annUser))
	require.NoError(t, e.votes.CastProxy(ctx, domain.VoteDate, trip.ID, date.ID, annUser, guest.ID))
	require.NoError(t, e.selection.Choose(ctx, domain.KindTransportation, trip.ID, organizer, bus.ID))

	rows, err := e.tally.Tally(ctx, trip.ID, maxUser)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, date.ID, rows[0].ProposalID)
	assert.Equal(t, 3, rows[0].Votes)
	assert.Equal(t, []string{"Ann", "Grandma", "Max"}, rows[0].Voters)

	assert.Equal(t, dest.ID, rows[1].ProposalID)
	assert.Zero(t, rows[1].Votes)
	assert.Equal(t, []string{}, rows[1].Voters)

	assert.Equal(t, domain.KindTransportation, rows[2].Kind)
	assert.True(t, rows[2].IsChosen)

	_, err = e.tally.Tally(ctx, trip.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
