// Package memstore is an in-memory implementation of repo.Store.
//
// Transactions are serialized by a single mutex. Each one works on a copy of
// the committed state which replaces it only when the callback succeeds, so a
// failed unit of work leaves no trace. Constraints that Postgres enforces with
// unique indexes and foreign keys are enforced here in code.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// ErrConstraint is returned when a write would violate a constraint that the
// Postgres schema enforces (unique keys, foreign keys, check constraints).
var ErrConstraint = errors.New("memstore: constraint violation")

// Store is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
	last  time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the source of created_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{state: newState(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ repo.Store = (*Store)(nil)

// WithTx runs fn against a private copy of the data and commits it if fn
// returns nil and ctx is still live.
func (s *Store) WithTx(ctx context.Context, fn func(r repo.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txn{st: s.state.clone(), store: s}
	if err := fn(tx.repos()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = tx.st
	return nil
}

// tick returns a strictly increasing timestamp so creation order is stable
// even when the clock does not advance between inserts.
func (s *Store) tick() time.Time {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

type state struct {
	users        map[uuid.UUID]domain.User
	trips        map[uuid.UUID]domain.Trip
	participants map[uuid.UUID]domain.Participant
	invites      map[uuid.UUID]domain.InviteCode
	claims       map[uuid.UUID]domain.PlaceholderClaim
	proposals    map[domain.ProposalKind]map[uuid.UUID]domain.Proposal
	votes        map[domain.VoteKind]map[uuid.UUID]domain.Vote
	gear         map[uuid.UUID]domain.GearAssignment
}

func newState() *state {
	st := &state{
		users:        map[uuid.UUID]domain.User{},
		trips:        map[uuid.UUID]domain.Trip{},
		participants: map[uuid.UUID]domain.Participant{},
		invites:      map[uuid.UUID]domain.InviteCode{},
		claims:       map[uuid.UUID]domain.PlaceholderClaim{},
		proposals:    map[domain.ProposalKind]map[uuid.UUID]domain.Proposal{},
		votes:        map[domain.VoteKind]map[uuid.UUID]domain.Vote{},
		gear:         map[uuid.UUID]domain.GearAssignment{},
	}
	for _, k := range domain.ProposalKinds {
		st.proposals[k] = map[uuid.UUID]domain.Proposal{}
	}
	for _, k := range domain.VoteKinds {
		st.votes[k] = map[uuid.UUID]domain.Vote{}
	}
	return st
}

// clone copies every table. Values are structs whose pointer fields are never
// mutated in place, so a shallow copy per map is enough.
func (st *state) clone() *state {
	c := &state{
		users:        copyMap(st.users),
		trips:        copyMap(st.trips),
		participants: copyMap(st.participants),
		invites:      copyMap(st.invites),
		claims:       copyMap(st.claims),
		proposals:    map[domain.ProposalKind]map[uuid.UUID]domain.Proposal{},
		votes:        map[domain.VoteKind]map[uuid.UUID]domain.Vote{},
		gear:         copyMap(st.gear),
	}
	for k, m := range st.proposals {
		c.proposals[k] = copyMap(m)
	}
	for k, m := range st.votes {
		c.votes[k] = copyMap(m)
	}
	return c
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// txn is the working copy handed to one WithTx callback.
type txn struct {
	st    *state
	store *Store
}

func (t *txn) repos() repo.Repos {
	return repo.Repos{
		Users:        userRepo{t},
		Trips:        tripRepo{t},
		Participants: participantRepo{t},
		Invites:      inviteRepo{t},
		Claims:       claimRepo{t},
		Proposals:    proposalRepo{t},
		Votes:        voteRepo{t},
		Gear:         gearRepo{t},
	}
}

// deleteParticipant removes a participant and everything keyed on it,
// mirroring ON DELETE CASCADE.
func (t *txn) deleteParticipant(id uuid.UUID) {
	delete(t.st.participants, id)
	for _, ledger := range t.st.votes {
		for vid, v := range ledger {
			if v.ParticipantID == id {
				delete(ledger, vid)
			}
		}
	}
	for gid, g := range t.st.gear {
		if g.ParticipantID == id {
			delete(t.st.gear, gid)
		}
	}
	for cid, c := range t.st.claims {
		if c.ParticipantID == id {
			delete(t.st.claims, cid)
		}
	}
}

// deleteProposal removes a proposal and the votes cast on it.
func (t *txn) deleteProposal(kind domain.ProposalKind, id uuid.UUID) {
	delete(t.st.proposals[kind], id)
	if vk, ok := kind.VoteKind(); ok {
		ledger := t.st.votes[vk]
		for vid, v := range ledger {
			if v.OptionID == id {
				delete(ledger, vid)
			}
		}
	}
}
