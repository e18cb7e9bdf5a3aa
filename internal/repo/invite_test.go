package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

func TestInviteRepo_Consume_RevokesAtQuota(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip, organizer := createTrip(t, r)
	now := time.Now().UTC()

	inv, err := r.Invites.Create(ctx, domain.InviteCode{
		TripID: trip.ID, CodeHash: "hash-quota", ExpiresAt: now.Add(time.Hour), MaxUses: 2, CreatedBy: organizer,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Uses)

	first, err := r.Invites.Consume(ctx, "hash-quota", now)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Uses)
	assert.Nil(t, first.RevokedAt)

	second, err := r.Invites.Consume(ctx, "hash-quota", now)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Uses)
	assert.NotNil(t, second.RevokedAt, "the last use revokes the invite")

	_, err = r.Invites.Consume(ctx, "hash-quota", now)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInviteRepo_Consume_Expired(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip, organizer := createTrip(t, r)
	now := time.Now().UTC()

	_, err := r.Invites.Create(ctx, domain.InviteCode{
		TripID: trip.ID, CodeHash: "hash-expired", ExpiresAt: now.Add(time.Minute), MaxUses: 5, CreatedBy: organizer,
	})
	require.NoError(t, err)

	_, err = r.Invites.Consume(ctx, "hash-expired", now.Add(time.Minute))
	assert.ErrorIs(t, err, domain.ErrNotFound, "expiry is exclusive")
}

func TestInviteRepo_Revoke_Idempotent(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip, organizer := createTrip(t, r)
	now := time.Now().UTC().Truncate(time.Microsecond)

	inv, err := r.Invites.Create(ctx, domain.InviteCode{
		TripID: trip.ID, CodeHash: "hash-revoke", ExpiresAt: now.Add(time.Hour), MaxUses: 5, CreatedBy: organizer,
	})
	require.NoError(t, err)

	first, err := r.Invites.Revoke(ctx, trip.ID, inv.ID, now)
	require.NoError(t, err)
	second, err := r.Invites.Revoke(ctx, trip.ID, inv.ID, now.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, second.RevokedAt)
	assert.True(t, first.RevokedAt.Equal(*second.RevokedAt), "first revocation time is kept")

	_, err = r.Invites.Revoke(ctx, trip.ID, uuid.New(), now)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClaimRepo_Consume_OnlyOnce(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip, organizer := createTrip(t, r)
	now := time.Now().UTC()
	ph, err := r.Participants.Create(ctx, domain.Participant{TripID: trip.ID, DisplayName: "Guest 1", IsPlaceholder: true, CreatedBy: organizer})
	require.NoError(t, err)

	_, err = r.Claims.Create(ctx, domain.PlaceholderClaim{
		TripID: trip.ID, ParticipantID: ph.ID, CodeHash: "claim-hash", ExpiresAt: now.Add(time.Hour), CreatedBy: organizer,
	})
	require.NoError(t, err)

	got, err := r.Claims.Consume(ctx, "claim-hash", now)
	require.NoError(t, err)
	assert.Equal(t, ph.ID, got.ParticipantID)
	assert.NotNil(t, got.RevokedAt)

	_, err = r.Claims.Consume(ctx, "claim-hash", now)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := r.Claims.ListByParticipant(ctx, trip.ID, ph.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
