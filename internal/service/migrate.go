package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// ParticipantMigrator moves the rows one participant-keyed table holds for
// from onto to during a claim merge. Rows to already has an equivalent of are
// dropped instead of moved. Migrate runs inside the merge transaction.
type ParticipantMigrator interface {
	Name() string
	Migrate(ctx context.Context, r repo.Repos, tripID, from, to uuid.UUID) (moved, dropped int, err error)
}

// DefaultMigrators covers every participant-keyed table the engine owns:
// the three vote ledgers and gear assignments.
func DefaultMigrators() []ParticipantMigrator {
	out := make([]ParticipantMigrator, 0, len(domain.VoteKinds)+1)
	for _, k := range domain.VoteKinds {
		out = append(out, voteMigrator{kind: k})
	}
	return append(out, gearMigrator{})
}

type voteMigrator struct {
	kind domain.VoteKind
}

func (m voteMigrator) Name() string { return string(m.kind) + "_votes" }

func (m voteMigrator) Migrate(ctx context.Context, r repo.Repos, _ uuid.UUID, from, to uuid.UUID) (int, int, error) {
	return r.Votes.Reassign(ctx, m.kind, from, to)
}

type gearMigrator struct{}

func (gearMigrator) Name() string { return "gear_assignments" }

func (gearMigrator) Migrate(ctx context.Context, r repo.Repos, tripID, from, to uuid.UUID) (int, int, error) {
	return r.Gear.Reassign(ctx, tripID, from, to)
}
