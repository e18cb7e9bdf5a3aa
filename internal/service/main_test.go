package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/code"
	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/repo/memstore"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

// fakeClock is a settable clock shared by the store and the services.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// engine wires every service to one in-memory store.
type engine struct {
	store        *memstore.Store
	clock        *fakeClock
	trips        *service.TripService
	proposals    *service.ProposalService
	participants *service.ParticipantService
	invites      *service.InviteService
	claims       *service.ClaimService
	votes        *service.VoteService
	selection    *service.SelectionService
	gear         *service.GearService
	tally        *service.TallyService
	users        *service.UserService
}

func newEngine(t *testing.T, claimOpts ...service.Option) *engine {
	t.Helper()
	clock := newFakeClock()
	store := memstore.New(memstore.WithClock(clock.Now))
	opts := []service.Option{service.WithClock(clock.Now)}
	return &engine{
		store:        store,
		clock:        clock,
		trips:        service.NewTripService(store, opts...),
		proposals:    service.NewProposalService(store, opts...),
		participants: service.NewParticipantService(store, opts...),
		invites:      service.NewInviteService(store, code.Generator{}, service.InvitePolicy{}, opts...),
		claims:       service.NewClaimService(store, code.Generator{}, 0, append(opts, claimOpts...)...),
		votes:        service.NewVoteService(store, opts...),
		selection:    service.NewSelectionService(store, opts...),
		gear:         service.NewGearService(store, opts...),
		tally:        service.NewTallyService(store, opts...),
		users:        service.NewUserService(store, opts...),
	}
}

// newTrip creates a trip and returns it with its organizer's user id.
func (e *engine) newTrip(t *testing.T) (domain.Trip, uuid.UUID) {
	t.Helper()
	organizer := uuid.New()
	trip, err := e.trips.Create(context.Background(), organizer, "Alps")
	require.NoError(t, err)
	return trip, organizer
}

// join makes a fresh user a real participant of the trip.
func (e *engine) join(t *testing.T, tripID uuid.UUID, name string) (domain.Participant, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	user := uuid.New()
	require.NoError(t, e.users.Remember(ctx, user, name))
	p, created, err := e.participants.AddReal(ctx, tripID, user)
	require.NoError(t, err)
	require.True(t, created)
	return p, user
}

func (e *engine) placeholder(t *testing.T, tripID, caller uuid.UUID, name string) domain.Participant {
	t.Helper()
	p, err := e.participants.AddPlaceholder(context.Background(), tripID, caller, name)
	require.NoError(t, err)
	return p
}

func (e *engine) propose(t *testing.T, kind domain.ProposalKind, tripID, caller uuid.UUID, title string) domain.Proposal {
	t.Helper()
	p, err := e.proposals.Create(context.Background(), kind, tripID, caller, title)
	require.NoError(t, err)
	return p
}

// votesOf reads a participant's votes straight from the store.
func (e *engine) votesOf(t *testing.T, kind domain.VoteKind, participantID uuid.UUID) []domain.Vote {
	t.Helper()
	var out []domain.Vote
	err := e.store.WithTx(context.Background(), func(r repo.Repos) error {
		var err error
		out, err = r.Votes.ListByParticipant(context.Background(), kind, participantID)
		return err
	})
	require.NoError(t, err)
	return out
}

func optionIDs(votes []domain.Vote) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(votes))
	for _, v := range votes {
		out = append(out, v.OptionID)
	}
	return out
}

// mockStore is a hand-written test double for repo.Store.
type mockStore struct {
	withTx func(ctx context.Context, fn func(r repo.Repos) error) error
}

func (m *mockStore) WithTx(ctx context.Context, fn func(r repo.Repos) error) error {
	return m.withTx(ctx, fn)
}

// compile-time check: mockStore must satisfy repo.Store.
var _ repo.Store = (*mockStore)(nil)
