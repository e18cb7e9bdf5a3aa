package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// InviteRepo defines the persistence operations for trip invite codes.
type InviteRepo interface {
	// Create inserts a new invite. Uses starts at zero.
	Create(ctx context.Context, inv domain.InviteCode) (domain.InviteCode, error)

	// Consume atomically spends one use of the invite with the given hash.
	// The update only applies while the invite is unrevoked, unexpired at now
	// and under quota; the use that reaches MaxUses also revokes it.
	// Returns domain.ErrNotFound when no usable invite matches.
	Consume(ctx context.Context, codeHash string, now time.Time) (domain.InviteCode, error)

	// GetByID returns domain.ErrNotFound if the invite is not in the trip.
	GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.InviteCode, error)

	// Revoke sets revoked_at unless already set. Revoking twice is not an error.
	// Returns domain.ErrNotFound if the invite is not in the trip.
	Revoke(ctx context.Context, tripID, id uuid.UUID, at time.Time) (domain.InviteCode, error)

	// ListByTrip returns the trip's invites, newest first.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.InviteCode, error)
}

type pgInviteRepo struct {
	db db
}

// NewInviteRepo constructs an InviteRepo backed by the provided db connection.
func NewInviteRepo(db db) InviteRepo {
	return &pgInviteRepo{db: db}
}

const inviteColumns = `id, trip_id, code_hash, expires_at, max_uses, uses, created_by, revoked_at, created_at`

func (r *pgInviteRepo) Create(ctx context.Context, inv domain.InviteCode) (domain.InviteCode, error) {
	const q = `
		INSERT INTO invite_codes (trip_id, code_hash, expires_at, max_uses, created_by)
		VALUES (@trip_id, @code_hash, @expires_at, @max_uses, @created_by)
		RETURNING ` + inviteColumns

	args := pgx.NamedArgs{
		"trip_id":    inv.TripID,
		"code_hash":  inv.CodeHash,
		"expires_at": inv.ExpiresAt,
		"max_uses":   inv.MaxUses,
		"created_by": inv.CreatedBy,
	}
	result, err := scanInvite(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.InviteCode{}, fmt.Errorf("repo.InviteRepo.Create: %w", err)
	}
	return result, nil
}

// Consume is a single conditional UPDATE, so the quota check and the
// increment cannot be split by a concurrent redemption.
func (r *pgInviteRepo) Consume(ctx context.Context, codeHash string, now time.Time) (domain.InviteCode, error) {
	const q = `
		UPDATE invite_codes
		SET uses       = uses + 1,
		    revoked_at = CASE WHEN uses + 1 >= max_uses THEN @now ELSE revoked_at END
		WHERE code_hash = @code_hash
		  AND revoked_at IS NULL
		  AND expires_at > @now
		  AND uses < max_uses
		RETURNING ` + inviteColumns

	result, err := scanInvite(r.db.QueryRow(ctx, q, pgx.NamedArgs{"code_hash": codeHash, "now": now}))
	if err != nil {
		return domain.InviteCode{}, fmt.Errorf("repo.InviteRepo.Consume: %w", err)
	}
	return result, nil
}

func (r *pgInviteRepo) GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.InviteCode, error) {
	const q = `SELECT ` + inviteColumns + ` FROM invite_codes WHERE trip_id = @trip_id AND id = @id`

	result, err := scanInvite(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": id}))
	if err != nil {
		return domain.InviteCode{}, fmt.Errorf("repo.InviteRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgInviteRepo) Revoke(ctx context.Context, tripID, id uuid.UUID, at time.Time) (domain.InviteCode, error) {
	const q = `
		UPDATE invite_codes
		SET revoked_at = COALESCE(revoked_at, @at)
		WHERE trip_id = @trip_id AND id = @id
		RETURNING ` + inviteColumns

	result, err := scanInvite(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": id, "at": at}))
	if err != nil {
		return domain.InviteCode{}, fmt.Errorf("repo.InviteRepo.Revoke: %w", err)
	}
	return result, nil
}

func (r *pgInviteRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.InviteCode, error) {
	const q = `
		SELECT ` + inviteColumns + `
		FROM invite_codes
		WHERE trip_id = @trip_id
		ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.InviteRepo.ListByTrip: %w", err)
	}
	list, err := collect(rows, scanInvite)
	if err != nil {
		return nil, fmt.Errorf("repo.InviteRepo.ListByTrip: %w", err)
	}
	return list, nil
}

func scanInvite(s scanner) (domain.InviteCode, error) {
	var (
		c         domain.InviteCode
		id        pgtype.UUID
		tripID    pgtype.UUID
		createdBy pgtype.UUID
		revokedAt pgtype.Timestamptz
	)
	err := s.Scan(&id, &tripID, &c.CodeHash, &c.ExpiresAt, &c.MaxUses, &c.Uses, &createdBy, &revokedAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.InviteCode{}, domain.ErrNotFound
		}
		return domain.InviteCode{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	c.TripID = uuid.UUID(tripID.Bytes)
	c.CreatedBy = uuid.UUID(createdBy.Bytes)
	c.RevokedAt = optionalTime(revokedAt)
	return c, nil
}
