// Package service contains the trip membership and decision engine.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on the repo.Store port, not an
// implementation. Every public operation runs as one store transaction,
// except claim redemption which commits its revoke on its own first.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// maxNameLength bounds display names, titles and gear items.
const maxNameLength = 200

// base carries what every service shares.
type base struct {
	store     repo.Store
	now       func() time.Time
	log       *slog.Logger
	migrators []ParticipantMigrator
}

// Option configures a service.
type Option func(*base)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// WithLogger sets the logger used for engine events.
func WithLogger(l *slog.Logger) Option {
	return func(b *base) { b.log = l }
}

// WithMigrators registers extra participant-keyed migrators run by the claim
// merge after the defaults. Only ClaimService uses it.
func WithMigrators(m ...ParticipantMigrator) Option {
	return func(b *base) { b.migrators = append(b.migrators, m...) }
}

func newBase(store repo.Store, opts []Option) base {
	b := base{
		store: store,
		now:   time.Now,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b base) clock() time.Time { return b.now().UTC() }

// access is the caller's resolved standing in a trip.
type access struct {
	trip        domain.Trip
	participant *domain.Participant // nil when the caller holds no row
	role        domain.Role
}

// authorize loads the trip and fails with domain.ErrForbidden unless the
// caller's role is at least min.
func authorize(ctx context.Context, r repo.Repos, tripID, caller uuid.UUID, min domain.Role) (access, error) {
	trip, err := r.Trips.GetByID(ctx, tripID)
	if err != nil {
		return access{}, err
	}
	return resolve(ctx, r, trip, caller, min)
}

// resolve is authorize for a trip the caller already loaded (or locked).
func resolve(ctx context.Context, r repo.Repos, trip domain.Trip, caller uuid.UUID, min domain.Role) (access, error) {
	a := access{trip: trip}
	p, err := r.Participants.GetByUser(ctx, trip.ID, caller)
	switch {
	case err == nil:
		a.participant = &p
	case !errors.Is(err, domain.ErrNotFound):
		return access{}, err
	}
	a.role = domain.RoleFor(trip, caller, a.participant != nil)
	if !a.role.AtLeast(min) {
		return access{}, fmt.Errorf("%w: requires %s, caller is %s", domain.ErrForbidden, min, a.role)
	}
	return a, nil
}

// cleanName trims s and rejects it when blank or too long.
func cleanName(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	if len([]rune(s)) > maxNameLength {
		return "", fmt.Errorf("%w: %s is longer than %d characters", domain.ErrValidation, field, maxNameLength)
	}
	return s, nil
}

// profileName is the user's profile name, or the generic label when the
// user is unknown or has none.
func profileName(ctx context.Context, r repo.Repos, userID uuid.UUID) (string, error) {
	u, err := r.Users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultDisplayName, nil
	}
	if err != nil {
		return "", err
	}
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return name, nil
	}
	return domain.DefaultDisplayName, nil
}

// addReal finds or creates the user's participant row in the trip.
func addReal(ctx context.Context, r repo.Repos, tripID, userID uuid.UUID) (domain.Participant, bool, error) {
	if userID == uuid.Nil {
		return domain.Participant{}, false, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if _, err := r.Trips.GetByID(ctx, tripID); err != nil {
		return domain.Participant{}, false, err
	}
	if p, err := r.Participants.GetByUser(ctx, tripID, userID); err == nil {
		return p, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Participant{}, false, err
	}
	name, err := profileName(ctx, r, userID)
	if err != nil {
		return domain.Participant{}, false, err
	}
	uid := userID
	return r.Participants.EnsureUser(ctx, domain.Participant{
		TripID:      tripID,
		UserID:      &uid,
		DisplayName: name,
		CreatedBy:   userID,
	})
}
