package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/code"
	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

func intPtr(n int) *int { return &n }
func durationPtr(d time.Duration) *time.Duration { return &d }

func TestInviteService_Create_Defaults(t *testing.T) {
	e := newEngine(t)
	trip, organizer := e.newTrip(t)

	issued, err := e.invites.Create(context.Background(), trip.ID, organizer, nil, nil)
	require.NoError(t, err)

	assert.Len(t, issued.Code, code.DefaultLength)
	assert.Equal(t, code.Hash(issued.Code), issued.Invite.CodeHash)
	assert.NotContains(t, issued.Invite.CodeHash, issued.Code)
	assert.Equal(t, service.DefaultInviteMaxUses, issued.Invite.MaxUses)
	assert.Equal(t, e.clock.Now().Add(service.DefaultInviteTTL), issued.Invite.ExpiresAt)
	assert.Zero(t, issued.Invite.Uses)
}

func TestInviteService_Create_Validation(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	trip, organizer := e.newTrip(t)

	_, err := e.invites.Create(ctx, trip.ID, organizer, nil, intPtr(0))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.invites.Create(ctx, trip.ID, organizer, durationPtr(-time.Minute), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInviteService_Create_OrganizerOnly(t *testing.T) {
	e := newEngine(t)
	trip, _ := e.newTrip(t)
	_, member := e.join(t, trip.ID, "Max")

	_, err := e.invites.Create(context.Background(), trip.ID, member, nil, nil)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestInviteService_Redeem_JoinsTrip(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	trip, organizer := e.newTrip(t)
	issued, err := e.invites.Create(ctx, trip.ID, organizer, nil, nil)
	require.NoError(t, err)

	user := uuid.New()
	require.NoError(t, e.users.Remember(ctx, user, "Rita"))

	// Users retype codes with separators and lower case.
	typed := strings.ToLower(issued.Code[:4] + "-" + issued.Code[4:] + " ")
	p, err := e.invites.Redeem(ctx, user, typed)
	require.NoError(t, err)
	assert.True(t, p.IsUser(user))
	assert.Equal(t, "Rita", p.DisplayName)

	again, err := e.invites.Redeem(ctx, user, issued.Code)
	require.NoError(t, err, "joining twice is success")
	assert.Equal(t, p.ID, again.ID)
}

func TestInviteService_Redeem_QuotaOfOne_Sequential(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	trip, organizer := e.newTrip(t)
	issued, err := e.invites.Create(ctx, trip.ID, organizer, nil, intPtr(1))
	require.NoError(t, err)

	_, err = e.invites.Redeem(ctx, uuid.New(), issued.Code)
	require.NoError(t, err)

	_, err = e.invites.Redeem(ctx, uuid.New(), issued.Code)
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	list, err := e.invites.List(ctx, trip.ID, organizer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Uses)
	assert.NotNil(t, list[0].RevokedAt, "reaching the quota revokes")
}

func TestInviteService_Redeem_QuotaOfOne_Concurrent(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	trip, organizer := e.newTrip(t)
	issued, err := e.invites.Create(ctx, trip.ID, organizer, nil, intPtr(1))
	require.NoError(t, err)

	const n = 12
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.invites.Redeem(ctx, uuid.New(), issued.Code)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidCode)
	}
	assert.Equal(t, 1, succeeded)

	list, err := e.invites.List(ctx, trip.ID, organizer)
	require.NoError(t, err)
	assert.Equal(t, 1, list[0].Uses)

	members, err := e.participants.List(ctx, trip.ID, organizer)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestInviteService_Redeem_FailuresAreIndistinguishable(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	trip, organizer := e.newTrip(t)

	expiring, err := e.invites.Create(ctx, trip.ID, organizer, durationPtr(time.Hour), nil)
	require.NoError(t, err)
	revoked, err := e.invites.Create(ctx, trip.ID, organizer, nil, nil)
	require.NoError(t, err)
	_, err = e.invites.Revoke(ctx, trip.ID, organizer, revoked.Invite.ID)
	require.NoError(t, err)
	e.clock.Advance(time.Hour)

	for name, c := range map[string]string{
		"wrong":   "ZZZZZZZZ",
		"expired": expiring.Code,
		"revoked": revoked.Code,
	} {
		_, err := e.invites.Redeem(ctx, uuid.New(), c)
		assert.ErrorIs(t, err, domain.ErrInvalidCode, name)
	}

	_, err = e.invites.Redeem(ctx, uuid.New(), " - ")
	assert.ErrorIs(t, err, domain.ErrValidation, "blank code")
}

func TestInviteService_Revoke(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	trip, organizer := e.newTrip(t)
	_, member := e.join(t, trip.ID, "Max")
	issued, err := e.invites.Create(ctx, trip.ID, organizer, nil, nil)
	require.NoError(t, err)

	_, err = e.invites.Revoke(ctx, trip.ID, member, issued.Invite.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	first, err := e.invites.Revoke(ctx, trip.ID, organizer, issued.Invite.ID)
	require.NoError(t, err)
	require.NotNil(t, first.RevokedAt)

	e.clock.Advance(time.Minute)
	second, err := e.invites.Revoke(ctx, trip.ID, organizer, issued.Invite.ID)
	require.NoError(t, err, "revoking twice is success")
	assert.Equal(t, *first.RevokedAt, *second.RevokedAt)

	_, err = e.invites.Revoke(ctx, trip.ID, organizer, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInviteService_Policy(t *testing.T) {
	e := newEngine(t)
	svc := service.NewInviteService(e.store, code.Generator{Length: 12},
		service.InvitePolicy{TTL: time.Hour, MaxUses: 3}, service.WithClock(e.clock.Now))
	trip, organizer := e.newTrip(t)

	issued, err := svc.Create(context.Background(), trip.ID, organizer, nil, nil)
	require.NoError(t, err)

	assert.Len(t, issued.Code, 12)
	assert.Equal(t, 3, issued.Invite.MaxUses)
	assert.Equal(t, e.clock.Now().Add(time.Hour), issued.Invite.ExpiresAt)
}
