package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/code"
	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// Default invite policy.
const (
	DefaultInviteTTL     = 24 * time.Hour
	DefaultInviteMaxUses = 10
)

// InvitePolicy holds the defaults applied when an invite is created without
// an explicit lifetime or quota.
type InvitePolicy struct {
	TTL     time.Duration
	MaxUses int
}

// IssuedInvite is returned once to the issuer. Code is the only copy of the
// plaintext; the store keeps its hash.
type IssuedInvite struct {
	Invite domain.InviteCode
	Code   string
}

// InviteService issues and redeems multi-use trip invites.
type InviteService struct {
	base
	codes  code.Generator
	policy InvitePolicy
}

// NewInviteService constructs an InviteService. Zero policy fields fall back
// to the package defaults.
func NewInviteService(store repo.Store, codes code.Generator, policy InvitePolicy, opts ...Option) *InviteService {
	if policy.TTL <= 0 {
		policy.TTL = DefaultInviteTTL
	}
	if policy.MaxUses < 1 {
		policy.MaxUses = DefaultInviteMaxUses
	}
	return &InviteService{base: newBase(store, opts), codes: codes, policy: policy}
}

// Create issues a new invite. Organizer only.
func (s *InviteService) Create(ctx context.Context, tripID, caller uuid.UUID, ttl *time.Duration, maxUses *int) (IssuedInvite, error) {
	life, quota := s.policy.TTL, s.policy.MaxUses
	if ttl != nil {
		if *ttl <= 0 {
			return IssuedInvite{}, fmt.Errorf("service.InviteService.Create: %w: ttl must be positive", domain.ErrValidation)
		}
		life = *ttl
	}
	if maxUses != nil {
		if *maxUses < 1 {
			return IssuedInvite{}, fmt.Errorf("service.InviteService.Create: %w: max uses must be at least 1", domain.ErrValidation)
		}
		quota = *maxUses
	}

	plain, err := s.codes.New()
	if err != nil {
		return IssuedInvite{}, fmt.Errorf("service.InviteService.Create: %w", err)
	}

	var inv domain.InviteCode
	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleOrganizer); err != nil {
			return err
		}
		var err error
		inv, err = r.Invites.Create(ctx, domain.InviteCode{
			TripID:    tripID,
			CodeHash:  code.Hash(plain),
			ExpiresAt: s.clock().Add(life),
			MaxUses:   quota,
			CreatedBy: caller,
		})
		return err
	})
	if err != nil {
		return IssuedInvite{}, fmt.Errorf("service.InviteService.Create: %w", err)
	}
	return IssuedInvite{Invite: inv, Code: plain}, nil
}

// Redeem spends one use of the invite and makes the caller a participant of
// its trip. Joining a trip the caller already belongs to still succeeds and
// still spends a use. Wrong, expired, revoked and exhausted codes all fail
// with domain.ErrInvalidCode.
func (s *InviteService) Redeem(ctx context.Context, caller uuid.UUID, rawCode string) (domain.Participant, error) {
	normalized := code.Normalize(rawCode)
	if normalized == "" {
		return domain.Participant{}, fmt.Errorf("service.InviteService.Redeem: %w: code is required", domain.ErrValidation)
	}
	if caller == uuid.Nil {
		return domain.Participant{}, fmt.Errorf("service.InviteService.Redeem: %w: caller is required", domain.ErrValidation)
	}

	var (
		p   domain.Participant
		inv domain.InviteCode
	)
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		var err error
		inv, err = r.Invites.Consume(ctx, code.Hash(normalized), s.clock())
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCode
		}
		if err != nil {
			return err
		}
		p, _, err = addReal(ctx, r, inv.TripID, caller)
		return err
	})
	if err != nil {
		return domain.Participant{}, fmt.Errorf("service.InviteService.Redeem: %w", err)
	}
	if inv.RevokedAt != nil {
		s.log.InfoContext(ctx, "invite exhausted",
			slog.String("trip_id", inv.TripID.String()),
			slog.String("invite_id", inv.ID.String()),
			slog.Int("uses", inv.Uses),
		)
	}
	return p, nil
}

// Revoke disables an invite. Revoking twice is not an error. Organizer only.
func (s *InviteService) Revoke(ctx context.Context, tripID, caller, inviteID uuid.UUID) (domain.InviteCode, error) {
	var inv domain.InviteCode
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleOrganizer); err != nil {
			return err
		}
		var err error
		inv, err = r.Invites.Revoke(ctx, tripID, inviteID, s.clock())
		return err
	})
	if err != nil {
		return domain.InviteCode{}, fmt.Errorf("service.InviteService.Revoke: %w", err)
	}
	return inv, nil
}

// List returns the trip's invites, newest first. Organizer only.
func (s *InviteService) List(ctx context.Context, tripID, caller uuid.UUID) ([]domain.InviteCode, error) {
	var out []domain.InviteCode
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleOrganizer); err != nil {
			return err
		}
		var err error
		out, err = r.Invites.ListByTrip(ctx, tripID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.InviteService.List: %w", err)
	}
	return out, nil
}
