package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/repo/memstore"
)

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	boom := errors.New("boom")

	var tripID uuid.UUID
	err := s.WithTx(ctx, func(r repo.Repos) error {
		trip, err := r.Trips.Create(ctx, domain.Trip{Name: "Alps", OrganizerID: uuid.New()})
		require.NoError(t, err)
		tripID = trip.ID
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = s.WithTx(ctx, func(r repo.Repos) error {
		_, err := r.Trips.GetByID(ctx, tripID)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_WithTx_CancelledContext(t *testing.T) {
	s := memstore.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithTx(ctx, func(repo.Repos) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_CreationOrderIsStable(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := memstore.New(memstore.WithClock(func() time.Time { return fixed }))

	var names []string
	err := s.WithTx(ctx, func(r repo.Repos) error {
		trip, err := r.Trips.Create(ctx, domain.Trip{Name: "Alps", OrganizerID: uuid.New()})
		require.NoError(t, err)
		for _, n := range []string{"Guest 1", "Guest 2", "Guest 3"} {
			_, err := r.Participants.Create(ctx, domain.Participant{TripID: trip.ID, DisplayName: n, IsPlaceholder: true})
			require.NoError(t, err)
		}
		list, err := r.Participants.ListByTrip(ctx, trip.ID)
		require.NoError(t, err)
		for _, p := range list {
			names = append(names, p.DisplayName)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Guest 1", "Guest 2", "Guest 3"}, names)
}

func TestStore_EnsureUser_UniquePerTrip(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	user := uuid.New()

	err := s.WithTx(ctx, func(r repo.Repos) error {
		trip, err := r.Trips.Create(ctx, domain.Trip{Name: "Alps", OrganizerID: user})
		require.NoError(t, err)

		first, created, err := r.Participants.EnsureUser(ctx, domain.Participant{TripID: trip.ID, UserID: &user, DisplayName: "Ann"})
		require.NoError(t, err)
		assert.True(t, created)

		second, created, err := r.Participants.EnsureUser(ctx, domain.Participant{TripID: trip.ID, UserID: &user, DisplayName: "Other"})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Ann", second.DisplayName)

		_, err = r.Participants.Create(ctx, domain.Participant{TripID: trip.ID, UserID: &user, DisplayName: "Dup"})
		assert.ErrorIs(t, err, memstore.ErrConstraint)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_TripDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	var tripID, guestID uuid.UUID
	err := s.WithTx(ctx, func(r repo.Repos) error {
		trip, err := r.Trips.Create(ctx, domain.Trip{Name: "Alps", OrganizerID: uuid.New()})
		require.NoError(t, err)
		tripID = trip.ID
		guest, err := r.Participants.Create(ctx, domain.Participant{TripID: trip.ID, DisplayName: "Guest 1", IsPlaceholder: true})
		require.NoError(t, err)
		guestID = guest.ID
		dest, err := r.Proposals.Create(ctx, domain.Proposal{Kind: domain.KindDestination, TripID: trip.ID, Title: "Zermatt"})
		require.NoError(t, err)
		_, err = r.Votes.Add(ctx, domain.VoteDestination, dest.ID, guest.ID)
		require.NoError(t, err)
		return r.Trips.Delete(ctx, trip.ID)
	})
	require.NoError(t, err)

	err = s.WithTx(ctx, func(r repo.Repos) error {
		votes, err := r.Votes.ListByParticipant(ctx, domain.VoteDestination, guestID)
		require.NoError(t, err)
		assert.Empty(t, votes)
		_, err = r.Participants.GetByID(ctx, tripID, guestID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_VoteReassign_DropsOverlap(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	err := s.WithTx(ctx, func(r repo.Repos) error {
		trip, err := r.Trips.Create(ctx, domain.Trip{Name: "Alps", OrganizerID: uuid.New()})
		require.NoError(t, err)
		from, err := r.Participants.Create(ctx, domain.Participant{TripID: trip.ID, DisplayName: "A", IsPlaceholder: true})
		require.NoError(t, err)
		to, err := r.Participants.Create(ctx, domain.Participant{TripID: trip.ID, DisplayName: "B", IsPlaceholder: true})
		require.NoError(t, err)
		x, err := r.Proposals.Create(ctx, domain.Proposal{Kind: domain.KindTerm, TripID: trip.ID, Title: "X"})
		require.NoError(t, err)
		y, err := r.Proposals.Create(ctx, domain.Proposal{Kind: domain.KindTerm, TripID: trip.ID, Title: "Y"})
		require.NoError(t, err)

		for _, v := range []struct{ option, participant uuid.UUID }{{x.ID, from.ID}, {y.ID, from.ID}, {x.ID, to.ID}} {
			_, err := r.Votes.Add(ctx, domain.VoteTerm, v.option, v.participant)
			require.NoError(t, err)
		}

		moved, dropped, err := r.Votes.Reassign(ctx, domain.VoteTerm, from.ID, to.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, moved)
		assert.Equal(t, 1, dropped)

		votes, err := r.Votes.ListByParticipant(ctx, domain.VoteTerm, to.ID)
		require.NoError(t, err)
		assert.Len(t, votes, 2)
		return nil
	})
	require.NoError(t, err)
}
