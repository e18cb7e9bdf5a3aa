package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/code"
	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// DefaultClaimTTL is the lifetime of a claim code issued without one.
const DefaultClaimTTL = 24 * time.Hour

// IssuedClaim is returned once to the issuer.
type IssuedClaim struct {
	Claim domain.PlaceholderClaim
	Code  string
}

// ClaimService issues one-time placeholder claim codes and redeems them,
// merging the placeholder with the caller's existing row when there is one.
type ClaimService struct {
	base
	codes code.Generator
	ttl   time.Duration
}

// NewClaimService constructs a ClaimService. A ttl of zero means
// DefaultClaimTTL. The merge runs DefaultMigrators followed by any passed
// with WithMigrators.
func NewClaimService(store repo.Store, codes code.Generator, ttl time.Duration, opts ...Option) *ClaimService {
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	s := &ClaimService{base: newBase(store, opts), codes: codes, ttl: ttl}
	s.migrators = append(DefaultMigrators(), s.migrators...)
	return s
}

// Issue creates a claim code for a placeholder. Any member may issue one.
func (s *ClaimService) Issue(ctx context.Context, tripID, caller, participantID uuid.UUID, ttl *time.Duration) (IssuedClaim, error) {
	life := s.ttl
	if ttl != nil {
		if *ttl <= 0 {
			return IssuedClaim{}, fmt.Errorf("service.ClaimService.Issue: %w: ttl must be positive", domain.ErrValidation)
		}
		life = *ttl
	}

	plain, err := s.codes.New()
	if err != nil {
		return IssuedClaim{}, fmt.Errorf("service.ClaimService.Issue: %w", err)
	}

	var c domain.PlaceholderClaim
	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := authorize(ctx, r, tripID, caller, domain.RoleMember); err != nil {
			return err
		}
		target, err := r.Participants.GetByID(ctx, tripID, participantID)
		if err != nil {
			return err
		}
		if !target.IsPlaceholder {
			return fmt.Errorf("%w: participant is not a placeholder", domain.ErrValidation)
		}
		c, err = r.Claims.Create(ctx, domain.PlaceholderClaim{
			TripID:        tripID,
			ParticipantID: participantID,
			CodeHash:      code.Hash(plain),
			ExpiresAt:     s.clock().Add(life),
			CreatedBy:     caller,
		})
		return err
	})
	if err != nil {
		return IssuedClaim{}, fmt.Errorf("service.ClaimService.Issue: %w", err)
	}
	return IssuedClaim{Claim: c, Code: plain}, nil
}

// Redeem converts the claimed placeholder into the caller's identity.
//
// The code is revoked in its own committed transaction before anything else
// happens, so it can never be replayed even when the conversion fails. The
// conversion then runs as a single transaction: if the caller already had a
// row in the trip, every migrator moves that row's references onto the
// placeholder, the old row is deleted, and the placeholder is linked to the
// caller. The placeholder's participant id survives.
func (s *ClaimService) Redeem(ctx context.Context, caller uuid.UUID, rawCode string, displayName *string) (domain.Participant, error) {
	normalized := code.Normalize(rawCode)
	if normalized == "" {
		return domain.Participant{}, fmt.Errorf("service.ClaimService.Redeem: %w: code is required", domain.ErrValidation)
	}
	if caller == uuid.Nil {
		return domain.Participant{}, fmt.Errorf("service.ClaimService.Redeem: %w: caller is required", domain.ErrValidation)
	}
	var override string
	if displayName != nil && strings.TrimSpace(*displayName) != "" {
		var err error
		if override, err = cleanName("display name", *displayName); err != nil {
			return domain.Participant{}, fmt.Errorf("service.ClaimService.Redeem: %w", err)
		}
	}

	var claim domain.PlaceholderClaim
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		var err error
		claim, err = r.Claims.Consume(ctx, code.Hash(normalized), s.clock())
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCode
		}
		return err
	})
	if err != nil {
		return domain.Participant{}, fmt.Errorf("service.ClaimService.Redeem: %w", err)
	}

	var (
		p      domain.Participant
		merged *domain.Participant
		counts []any
	)
	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		merged, counts = nil, nil

		target, err := r.Participants.GetByID(ctx, claim.TripID, claim.ParticipantID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCode
		}
		if err != nil {
			return err
		}
		if !target.IsPlaceholder {
			return domain.ErrInvalidCode
		}

		name := override
		if name == "" {
			if name, err = profileName(ctx, r, caller); err != nil {
				return err
			}
		}

		existing, err := r.Participants.GetByUser(ctx, claim.TripID, caller)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return err
		case existing.ID != target.ID:
			for _, m := range s.migrators {
				moved, dropped, err := m.Migrate(ctx, r, claim.TripID, existing.ID, target.ID)
				if err != nil {
					return fmt.Errorf("migrate %s: %w", m.Name(), err)
				}
				counts = append(counts, slog.Group(m.Name(), slog.Int("moved", moved), slog.Int("dropped", dropped)))
			}
			if err := r.Participants.Delete(ctx, claim.TripID, existing.ID); err != nil {
				return err
			}
			merged = &existing
		}

		p, err = r.Participants.Claim(ctx, claim.TripID, target.ID, caller, name, s.clock())
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCode
		}
		return err
	})
	if err != nil {
		return domain.Participant{}, fmt.Errorf("service.ClaimService.Redeem: %w", err)
	}

	if merged != nil {
		attrs := append([]any{
			slog.String("trip_id", claim.TripID.String()),
			slog.String("from_participant_id", merged.ID.String()),
			slog.String("to_participant_id", p.ID.String()),
		}, counts...)
		s.log.InfoContext(ctx, "placeholder claimed with merge", attrs...)
	}
	return p, nil
}
