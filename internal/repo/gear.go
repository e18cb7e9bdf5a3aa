package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// GearRepo defines the persistence operations for gear checklist assignments.
type GearRepo interface {
	// Assign puts a participant in charge of an item. Idempotent: created is
	// false and the existing row is returned if the assignment existed.
	Assign(ctx context.Context, g domain.GearAssignment) (result domain.GearAssignment, created bool, err error)

	// Unassign removes an assignment. Idempotent.
	Unassign(ctx context.Context, tripID, participantID uuid.UUID, item string) (removed bool, err error)

	// ListByTrip returns the trip's assignments ordered by item.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.GearAssignment, error)

	// Reassign moves from's assignments onto to, dropping the ones to already holds.
	Reassign(ctx context.Context, tripID, from, to uuid.UUID) (moved, dropped int, err error)
}

type pgGearRepo struct {
	db db
}

// NewGearRepo constructs a GearRepo backed by the provided db connection.
func NewGearRepo(db db) GearRepo {
	return &pgGearRepo{db: db}
}

const gearColumns = `id, trip_id, item, participant_id, created_at`

func (r *pgGearRepo) Assign(ctx context.Context, g domain.GearAssignment) (domain.GearAssignment, bool, error) {
	const q = `
		INSERT INTO gear_assignments (trip_id, item, participant_id)
		VALUES (@trip_id, @item, @participant_id)
		ON CONFLICT (trip_id, item, participant_id) DO NOTHING
		RETURNING ` + gearColumns

	args := pgx.NamedArgs{"trip_id": g.TripID, "item": g.Item, "participant_id": g.ParticipantID}
	result, err := scanGear(r.db.QueryRow(ctx, q, args))
	if err == nil {
		return result, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.GearAssignment{}, false, fmt.Errorf("repo.GearRepo.Assign: %w", err)
	}

	const existing = `
		SELECT ` + gearColumns + `
		FROM gear_assignments
		WHERE trip_id = @trip_id AND item = @item AND participant_id = @participant_id`
	result, err = scanGear(r.db.QueryRow(ctx, existing, args))
	if err != nil {
		return domain.GearAssignment{}, false, fmt.Errorf("repo.GearRepo.Assign: %w", err)
	}
	return result, false, nil
}

func (r *pgGearRepo) Unassign(ctx context.Context, tripID, participantID uuid.UUID, item string) (bool, error) {
	const q = `
		DELETE FROM gear_assignments
		WHERE trip_id = @trip_id AND participant_id = @participant_id AND item = @item`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "participant_id": participantID, "item": item})
	if err != nil {
		return false, fmt.Errorf("repo.GearRepo.Unassign: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgGearRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.GearAssignment, error) {
	const q = `
		SELECT ` + gearColumns + `
		FROM gear_assignments
		WHERE trip_id = @trip_id
		ORDER BY item, created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.GearRepo.ListByTrip: %w", err)
	}
	list, err := collect(rows, scanGear)
	if err != nil {
		return nil, fmt.Errorf("repo.GearRepo.ListByTrip: %w", err)
	}
	return list, nil
}

func (r *pgGearRepo) Reassign(ctx context.Context, tripID, from, to uuid.UUID) (int, int, error) {
	const drop = `
		DELETE FROM gear_assignments g
		WHERE g.trip_id = @trip_id
		  AND g.participant_id = @from
		  AND EXISTS (
		      SELECT 1 FROM gear_assignments s
		      WHERE s.trip_id = g.trip_id AND s.item = g.item AND s.participant_id = @to)`
	const move = `
		UPDATE gear_assignments
		SET participant_id = @to
		WHERE trip_id = @trip_id AND participant_id = @from`
	args := pgx.NamedArgs{"trip_id": tripID, "from": from, "to": to}

	dropped, err := r.db.Exec(ctx, drop, args)
	if err != nil {
		return 0, 0, fmt.Errorf("repo.GearRepo.Reassign: drop: %w", err)
	}
	moved, err := r.db.Exec(ctx, move, args)
	if err != nil {
		return 0, 0, fmt.Errorf("repo.GearRepo.Reassign: move: %w", err)
	}
	return int(moved.RowsAffected()), int(dropped.RowsAffected()), nil
}

func scanGear(s scanner) (domain.GearAssignment, error) {
	var (
		g             domain.GearAssignment
		id            pgtype.UUID
		tripID        pgtype.UUID
		participantID pgtype.UUID
	)
	if err := s.Scan(&id, &tripID, &g.Item, &participantID, &g.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GearAssignment{}, domain.ErrNotFound
		}
		return domain.GearAssignment{}, err
	}
	g.ID = uuid.UUID(id.Bytes)
	g.TripID = uuid.UUID(tripID.Bytes)
	g.ParticipantID = uuid.UUID(participantID.Bytes)
	return g, nil
}
