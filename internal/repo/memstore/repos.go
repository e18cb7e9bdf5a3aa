package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

type userRepo struct{ t *txn }

func (r userRepo) Upsert(_ context.Context, user domain.User) (domain.User, error) {
	r.t.st.users[user.ID] = user
	return user, nil
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := r.t.st.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("memstore.UserRepo.GetByID: %w", domain.ErrNotFound)
	}
	return u, nil
}

type tripRepo struct{ t *txn }

func (r tripRepo) Create(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	trip.ID = uuid.New()
	trip.CreatedAt = r.t.store.tick()
	trip.UpdatedAt = trip.CreatedAt
	r.t.st.trips[trip.ID] = trip
	return trip, nil
}

func (r tripRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, ok := r.t.st.trips[id]
	if !ok {
		return domain.Trip{}, fmt.Errorf("memstore.TripRepo.GetByID: %w", domain.ErrNotFound)
	}
	return trip, nil
}

// Lock is GetByID: the store mutex already serializes whole transactions.
func (r tripRepo) Lock(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return r.GetByID(ctx, id)
}

func (r tripRepo) ListByUser(_ context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	member := map[uuid.UUID]bool{}
	for _, p := range r.t.st.participants {
		if p.IsUser(userID) {
			member[p.TripID] = true
		}
	}
	out := []domain.Trip{}
	for _, trip := range r.t.st.trips {
		if trip.OrganizerID == userID || member[trip.ID] {
			out = append(out, trip)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	lo := min(p.Offset(), len(out))
	hi := min(lo+p.Limit, len(out))
	return out[lo:hi], total, nil
}

func (r tripRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.t.st.trips[id]; !ok {
		return fmt.Errorf("memstore.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.t.st.trips, id)
	for pid, p := range r.t.st.participants {
		if p.TripID == id {
			r.t.deleteParticipant(pid)
		}
	}
	for kind, m := range r.t.st.proposals {
		for oid, p := range m {
			if p.TripID == id {
				r.t.deleteProposal(kind, oid)
			}
		}
	}
	for iid, inv := range r.t.st.invites {
		if inv.TripID == id {
			delete(r.t.st.invites, iid)
		}
	}
	return nil
}

type participantRepo struct{ t *txn }

func (r participantRepo) Create(ctx context.Context, p domain.Participant) (domain.Participant, error) {
	if _, ok := r.t.st.trips[p.TripID]; !ok {
		return domain.Participant{}, fmt.Errorf("memstore.ParticipantRepo.Create: trip: %w", ErrConstraint)
	}
	if p.IsPlaceholder != (p.UserID == nil) {
		return domain.Participant{}, fmt.Errorf("memstore.ParticipantRepo.Create: placeholder/user mismatch: %w", ErrConstraint)
	}
	if p.UserID != nil {
		if _, err := r.GetByUser(ctx, p.TripID, *p.UserID); err == nil {
			return domain.Participant{}, fmt.Errorf("memstore.ParticipantRepo.Create: (trip_id, user_id): %w", ErrConstraint)
		}
	}
	p.ID = uuid.New()
	p.ClaimedAt = nil
	p.CreatedAt = r.t.store.tick()
	r.t.st.participants[p.ID] = p
	return p, nil
}

func (r participantRepo) EnsureUser(ctx context.Context, p domain.Participant) (domain.Participant, bool, error) {
	if p.UserID == nil {
		return domain.Participant{}, false, fmt.Errorf("memstore.ParticipantRepo.EnsureUser: %w: user id is required", domain.ErrValidation)
	}
	if existing, err := r.GetByUser(ctx, p.TripID, *p.UserID); err == nil {
		return existing, false, nil
	}
	p.IsPlaceholder = false
	created, err := r.Create(ctx, p)
	if err != nil {
		return domain.Participant{}, false, err
	}
	return created, true, nil
}

func (r participantRepo) GetByID(_ context.Context, tripID, id uuid.UUID) (domain.Participant, error) {
	p, ok := r.t.st.participants[id]
	if !ok || p.TripID != tripID {
		return domain.Participant{}, fmt.Errorf("memstore.ParticipantRepo.GetByID: %w", domain.ErrNotFound)
	}
	return p, nil
}

func (r participantRepo) GetByUser(_ context.Context, tripID, userID uuid.UUID) (domain.Participant, error) {
	for _, p := range r.t.st.participants {
		if p.TripID == tripID && p.IsUser(userID) {
			return p, nil
		}
	}
	return domain.Participant{}, fmt.Errorf("memstore.ParticipantRepo.GetByUser: %w", domain.ErrNotFound)
}

func (r participantRepo) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.Participant, error) {
	out := []domain.Participant{}
	for _, p := range r.t.st.participants {
		if p.TripID == tripID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r participantRepo) CountPlaceholders(_ context.Context, tripID uuid.UUID) (int, error) {
	n := 0
	for _, p := range r.t.st.participants {
		if p.TripID == tripID && p.IsPlaceholder {
			n++
		}
	}
	return n, nil
}

func (r participantRepo) UpdateName(ctx context.Context, tripID, id uuid.UUID, name string) (domain.Participant, error) {
	p, err := r.GetByID(ctx, tripID, id)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("memstore.ParticipantRepo.UpdateName: %w", domain.ErrNotFound)
	}
	p.DisplayName = name
	r.t.st.participants[id] = p
	return p, nil
}

func (r participantRepo) Claim(ctx context.Context, tripID, id, userID uuid.UUID, name string, at time.Time) (domain.Participant, error) {
	p, err := r.GetByID(ctx, tripID, id)
	if err != nil || !p.IsPlaceholder {
		return domain.Participant{}, fmt.Errorf("memstore.ParticipantRepo.Claim: %w", domain.ErrNotFound)
	}
	if other, err := r.GetByUser(ctx, tripID, userID); err == nil && other.ID != id {
		return domain.Participant{}, fmt.Errorf("memstore.ParticipantRepo.Claim: (trip_id, user_id): %w", ErrConstraint)
	}
	uid := userID
	claimedAt := at
	p.UserID = &uid
	p.DisplayName = name
	p.IsPlaceholder = false
	p.ClaimedAt = &claimedAt
	r.t.st.participants[id] = p
	return p, nil
}

func (r participantRepo) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, tripID, id); err != nil {
		return fmt.Errorf("memstore.ParticipantRepo.Delete: %w", domain.ErrNotFound)
	}
	r.t.deleteParticipant(id)
	return nil
}

type inviteRepo struct{ t *txn }

func (r inviteRepo) Create(_ context.Context, inv domain.InviteCode) (domain.InviteCode, error) {
	if _, ok := r.t.st.trips[inv.TripID]; !ok {
		return domain.InviteCode{}, fmt.Errorf("memstore.InviteRepo.Create: trip: %w", ErrConstraint)
	}
	if inv.MaxUses < 1 {
		return domain.InviteCode{}, fmt.Errorf("memstore.InviteRepo.Create: max_uses: %w", ErrConstraint)
	}
	for _, existing := range r.t.st.invites {
		if existing.CodeHash == inv.CodeHash {
			return domain.InviteCode{}, fmt.Errorf("memstore.InviteRepo.Create: code_hash: %w", ErrConstraint)
		}
	}
	inv.ID = uuid.New()
	inv.Uses = 0
	inv.RevokedAt = nil
	inv.CreatedAt = r.t.store.tick()
	r.t.st.invites[inv.ID] = inv
	return inv, nil
}

func (r inviteRepo) Consume(_ context.Context, codeHash string, now time.Time) (domain.InviteCode, error) {
	for id, inv := range r.t.st.invites {
		if inv.CodeHash != codeHash || !inv.Usable(now) {
			continue
		}
		inv.Uses++
		if inv.Uses >= inv.MaxUses {
			at := now
			inv.RevokedAt = &at
		}
		r.t.st.invites[id] = inv
		return inv, nil
	}
	return domain.InviteCode{}, fmt.Errorf("memstore.InviteRepo.Consume: %w", domain.ErrNotFound)
}

func (r inviteRepo) GetByID(_ context.Context, tripID, id uuid.UUID) (domain.InviteCode, error) {
	inv, ok := r.t.st.invites[id]
	if !ok || inv.TripID != tripID {
		return domain.InviteCode{}, fmt.Errorf("memstore.InviteRepo.GetByID: %w", domain.ErrNotFound)
	}
	return inv, nil
}

func (r inviteRepo) Revoke(ctx context.Context, tripID, id uuid.UUID, at time.Time) (domain.InviteCode, error) {
	inv, err := r.GetByID(ctx, tripID, id)
	if err != nil {
		return domain.InviteCode{}, fmt.Errorf("memstore.InviteRepo.Revoke: %w", domain.ErrNotFound)
	}
	if inv.RevokedAt == nil {
		revokedAt := at
		inv.RevokedAt = &revokedAt
		r.t.st.invites[id] = inv
	}
	return inv, nil
}

func (r inviteRepo) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.InviteCode, error) {
	out := []domain.InviteCode{}
	for _, inv := range r.t.st.invites {
		if inv.TripID == tripID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type claimRepo struct{ t *txn }

func (r claimRepo) Create(_ context.Context, c domain.PlaceholderClaim) (domain.PlaceholderClaim, error) {
	p, ok := r.t.st.participants[c.ParticipantID]
	if !ok || p.TripID != c.TripID {
		return domain.PlaceholderClaim{}, fmt.Errorf("memstore.ClaimRepo.Create: participant: %w", ErrConstraint)
	}
	for _, existing := range r.t.st.claims {
		if existing.CodeHash == c.CodeHash {
			return domain.PlaceholderClaim{}, fmt.Errorf("memstore.ClaimRepo.Create: code_hash: %w", ErrConstraint)
		}
	}
	c.ID = uuid.New()
	c.RevokedAt = nil
	c.CreatedAt = r.t.store.tick()
	r.t.st.claims[c.ID] = c
	return c, nil
}

func (r claimRepo) Consume(_ context.Context, codeHash string, now time.Time) (domain.PlaceholderClaim, error) {
	for id, c := range r.t.st.claims {
		if c.CodeHash != codeHash || !c.Usable(now) {
			continue
		}
		at := now
		c.RevokedAt = &at
		r.t.st.claims[id] = c
		return c, nil
	}
	return domain.PlaceholderClaim{}, fmt.Errorf("memstore.ClaimRepo.Consume: %w", domain.ErrNotFound)
}

func (r claimRepo) ListByParticipant(_ context.Context, tripID, participantID uuid.UUID) ([]domain.PlaceholderClaim, error) {
	out := []domain.PlaceholderClaim{}
	for _, c := range r.t.st.claims {
		if c.TripID == tripID && c.ParticipantID == participantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type proposalRepo struct{ t *txn }

func (r proposalRepo) table(kind domain.ProposalKind) (map[uuid.UUID]domain.Proposal, error) {
	m, ok := r.t.st.proposals[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown proposal kind %q", domain.ErrValidation, kind)
	}
	return m, nil
}

func (r proposalRepo) Create(_ context.Context, p domain.Proposal) (domain.Proposal, error) {
	m, err := r.table(p.Kind)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("memstore.ProposalRepo.Create: %w", err)
	}
	if _, ok := r.t.st.trips[p.TripID]; !ok {
		return domain.Proposal{}, fmt.Errorf("memstore.ProposalRepo.Create: trip: %w", ErrConstraint)
	}
	p.ID = uuid.New()
	p.IsChosen = false
	p.CreatedAt = r.t.store.tick()
	m[p.ID] = p
	return p, nil
}

func (r proposalRepo) GetByID(_ context.Context, kind domain.ProposalKind, tripID, id uuid.UUID) (domain.Proposal, error) {
	m, err := r.table(kind)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("memstore.ProposalRepo.GetByID: %w", err)
	}
	p, ok := m[id]
	if !ok || p.TripID != tripID {
		return domain.Proposal{}, fmt.Errorf("memstore.ProposalRepo.GetByID: %w", domain.ErrNotFound)
	}
	return p, nil
}

func (r proposalRepo) ListByTrip(_ context.Context, kind domain.ProposalKind, tripID uuid.UUID) ([]domain.Proposal, error) {
	m, err := r.table(kind)
	if err != nil {
		return nil, fmt.Errorf("memstore.ProposalRepo.ListByTrip: %w", err)
	}
	out := []domain.Proposal{}
	for _, p := range m {
		if p.TripID == tripID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r proposalRepo) Delete(ctx context.Context, kind domain.ProposalKind, tripID, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, kind, tripID, id); err != nil {
		return fmt.Errorf("memstore.ProposalRepo.Delete: %w", err)
	}
	r.t.deleteProposal(kind, id)
	return nil
}

func (r proposalRepo) Choose(ctx context.Context, kind domain.ProposalKind, tripID, id uuid.UUID) error {
	if !kind.Exclusive() {
		return fmt.Errorf("memstore.ProposalRepo.Choose: %w: %s proposals cannot be chosen", domain.ErrValidation, kind)
	}
	target, err := r.GetByID(ctx, kind, tripID, id)
	if err != nil {
		return fmt.Errorf("memstore.ProposalRepo.Choose: %w", err)
	}
	m := r.t.st.proposals[kind]
	for oid, p := range m {
		if p.TripID == tripID && p.IsChosen && oid != id {
			p.IsChosen = false
			m[oid] = p
		}
	}
	target.IsChosen = true
	m[id] = target
	return nil
}

func (r proposalRepo) Unchoose(ctx context.Context, kind domain.ProposalKind, tripID, id uuid.UUID) error {
	target, err := r.GetByID(ctx, kind, tripID, id)
	if err != nil {
		return fmt.Errorf("memstore.ProposalRepo.Unchoose: %w", err)
	}
	target.IsChosen = false
	r.t.st.proposals[kind][id] = target
	return nil
}

type voteRepo struct{ t *txn }

func (r voteRepo) ledger(kind domain.VoteKind) (map[uuid.UUID]domain.Vote, error) {
	m, ok := r.t.st.votes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown vote kind %q", domain.ErrValidation, kind)
	}
	return m, nil
}

func (r voteRepo) find(m map[uuid.UUID]domain.Vote, optionID, participantID uuid.UUID) (domain.Vote, bool) {
	for _, v := range m {
		if v.OptionID == optionID && v.ParticipantID == participantID {
			return v, true
		}
	}
	return domain.Vote{}, false
}

func (r voteRepo) Add(_ context.Context, kind domain.VoteKind, optionID, participantID uuid.UUID) (bool, error) {
	m, err := r.ledger(kind)
	if err != nil {
		return false, fmt.Errorf("memstore.VoteRepo.Add: %w", err)
	}
	if _, ok := r.t.st.proposals[kind.ProposalKind()][optionID]; !ok {
		return false, fmt.Errorf("memstore.VoteRepo.Add: option: %w", ErrConstraint)
	}
	if _, ok := r.t.st.participants[participantID]; !ok {
		return false, fmt.Errorf("memstore.VoteRepo.Add: participant: %w", ErrConstraint)
	}
	if _, ok := r.find(m, optionID, participantID); ok {
		return false, nil
	}
	v := domain.Vote{
		ID:            uuid.New(),
		Kind:          kind,
		OptionID:      optionID,
		ParticipantID: participantID,
		CreatedAt:     r.t.store.tick(),
	}
	m[v.ID] = v
	return true, nil
}

func (r voteRepo) Remove(_ context.Context, kind domain.VoteKind, optionID, participantID uuid.UUID) (bool, error) {
	m, err := r.ledger(kind)
	if err != nil {
		return false, fmt.Errorf("memstore.VoteRepo.Remove: %w", err)
	}
	v, ok := r.find(m, optionID, participantID)
	if !ok {
		return false, nil
	}
	delete(m, v.ID)
	return true, nil
}

func (r voteRepo) ListByParticipant(_ context.Context, kind domain.VoteKind, participantID uuid.UUID) ([]domain.Vote, error) {
	m, err := r.ledger(kind)
	if err != nil {
		return nil, fmt.Errorf("memstore.VoteRepo.ListByParticipant: %w", err)
	}
	out := []domain.Vote{}
	for _, v := range m {
		if v.ParticipantID == participantID {
			out = append(out, v)
		}
	}
	sortVotes(out)
	return out, nil
}

func (r voteRepo) ListByTrip(_ context.Context, kind domain.VoteKind, tripID uuid.UUID) ([]domain.Vote, error) {
	m, err := r.ledger(kind)
	if err != nil {
		return nil, fmt.Errorf("memstore.VoteRepo.ListByTrip: %w", err)
	}
	options := r.t.st.proposals[kind.ProposalKind()]
	out := []domain.Vote{}
	for _, v := range m {
		if options[v.OptionID].TripID == tripID {
			out = append(out, v)
		}
	}
	sortVotes(out)
	return out, nil
}

func (r voteRepo) Reassign(_ context.Context, kind domain.VoteKind, from, to uuid.UUID) (int, int, error) {
	m, err := r.ledger(kind)
	if err != nil {
		return 0, 0, fmt.Errorf("memstore.VoteRepo.Reassign: %w", err)
	}
	if _, ok := r.t.st.participants[to]; !ok {
		return 0, 0, fmt.Errorf("memstore.VoteRepo.Reassign: participant: %w", ErrConstraint)
	}
	moved, dropped := 0, 0
	for id, v := range m {
		if v.ParticipantID != from {
			continue
		}
		if _, dup := r.find(m, v.OptionID, to); dup {
			delete(m, id)
			dropped++
			continue
		}
		v.ParticipantID = to
		m[id] = v
		moved++
	}
	return moved, dropped, nil
}

func sortVotes(vs []domain.Vote) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].CreatedAt.Before(vs[j].CreatedAt) })
}

type gearRepo struct{ t *txn }

func (r gearRepo) find(tripID, participantID uuid.UUID, item string) (domain.GearAssignment, bool) {
	for _, g := range r.t.st.gear {
		if g.TripID == tripID && g.ParticipantID == participantID && g.Item == item {
			return g, true
		}
	}
	return domain.GearAssignment{}, false
}

func (r gearRepo) Assign(_ context.Context, g domain.GearAssignment) (domain.GearAssignment, bool, error) {
	p, ok := r.t.st.participants[g.ParticipantID]
	if !ok || p.TripID != g.TripID {
		return domain.GearAssignment{}, false, fmt.Errorf("memstore.GearRepo.Assign: participant: %w", ErrConstraint)
	}
	if existing, ok := r.find(g.TripID, g.ParticipantID, g.Item); ok {
		return existing, false, nil
	}
	g.ID = uuid.New()
	g.CreatedAt = r.t.store.tick()
	r.t.st.gear[g.ID] = g
	return g, true, nil
}

func (r gearRepo) Unassign(_ context.Context, tripID, participantID uuid.UUID, item string) (bool, error) {
	g, ok := r.find(tripID, participantID, item)
	if !ok {
		return false, nil
	}
	delete(r.t.st.gear, g.ID)
	return true, nil
}

func (r gearRepo) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.GearAssignment, error) {
	out := []domain.GearAssignment{}
	for _, g := range r.t.st.gear {
		if g.TripID == tripID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Item != out[j].Item {
			return out[i].Item < out[j].Item
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r gearRepo) Reassign(_ context.Context, tripID, from, to uuid.UUID) (int, int, error) {
	moved, dropped := 0, 0
	for id, g := range r.t.st.gear {
		if g.TripID != tripID || g.ParticipantID != from {
			continue
		}
		if _, dup := r.find(tripID, to, g.Item); dup {
			delete(r.t.st.gear, id)
			dropped++
			continue
		}
		g.ParticipantID = to
		r.t.st.gear[id] = g
		moved++
	}
	return moved, dropped, nil
}
