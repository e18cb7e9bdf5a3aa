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

// ClaimRepo defines the persistence operations for placeholder claim codes.
type ClaimRepo interface {
	// Create inserts a new claim code for a placeholder.
	Create(ctx context.Context, c domain.PlaceholderClaim) (domain.PlaceholderClaim, error)

	// Consume revokes the unrevoked claim with the given hash that is still
	// unexpired at now, and returns it. Only one caller can ever consume a
	// given claim. Returns domain.ErrNotFound when nothing matches.
	Consume(ctx context.Context, codeHash string, now time.Time) (domain.PlaceholderClaim, error)

	// ListByParticipant returns all claims issued for a placeholder, newest first.
	ListByParticipant(ctx context.Context, tripID, participantID uuid.UUID) ([]domain.PlaceholderClaim, error)
}

type pgClaimRepo struct {
	db db
}

// NewClaimRepo constructs a ClaimRepo backed by the provided db connection.
func NewClaimRepo(db db) ClaimRepo {
	return &pgClaimRepo{db: db}
}

const claimColumns = `id, trip_id, participant_id, code_hash, expires_at, created_by, revoked_at, created_at`

func (r *pgClaimRepo) Create(ctx context.Context, c domain.PlaceholderClaim) (domain.PlaceholderClaim, error) {
	const q = `
		INSERT INTO placeholder_claims (trip_id, participant_id, code_hash, expires_at, created_by)
		VALUES (@trip_id, @participant_id, @code_hash, @expires_at, @created_by)
		RETURNING ` + claimColumns

	args := pgx.NamedArgs{
		"trip_id":        c.TripID,
		"participant_id": c.ParticipantID,
		"code_hash":      c.CodeHash,
		"expires_at":     c.ExpiresAt,
		"created_by":     c.CreatedBy,
	}
	result, err := scanClaim(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.PlaceholderClaim{}, fmt.Errorf("repo.ClaimRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgClaimRepo) Consume(ctx context.Context, codeHash string, now time.Time) (domain.PlaceholderClaim, error) {
	const q = `
		UPDATE placeholder_claims
		SET revoked_at = @now
		WHERE code_hash = @code_hash
		  AND revoked_at IS NULL
		  AND expires_at > @now
		RETURNING ` + claimColumns

	result, err := scanClaim(r.db.QueryRow(ctx, q, pgx.NamedArgs{"code_hash": codeHash, "now": now}))
	if err != nil {
		return domain.PlaceholderClaim{}, fmt.Errorf("repo.ClaimRepo.Consume: %w", err)
	}
	return result, nil
}

func (r *pgClaimRepo) ListByParticipant(ctx context.Context, tripID, participantID uuid.UUID) ([]domain.PlaceholderClaim, error) {
	const q = `
		SELECT ` + claimColumns + `
		FROM placeholder_claims
		WHERE trip_id = @trip_id AND participant_id = @participant_id
		ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID, "participant_id": participantID})
	if err != nil {
		return nil, fmt.Errorf("repo.ClaimRepo.ListByParticipant: %w", err)
	}
	list, err := collect(rows, scanClaim)
	if err != nil {
		return nil, fmt.Errorf("repo.ClaimRepo.ListByParticipant: %w", err)
	}
	return list, nil
}

func scanClaim(s scanner) (domain.PlaceholderClaim, error) {
	var (
		c             domain.PlaceholderClaim
		id            pgtype.UUID
		tripID        pgtype.UUID
		participantID pgtype.UUID
		createdBy     pgtype.UUID
		revokedAt     pgtype.Timestamptz
	)
	err := s.Scan(&id, &tripID, &participantID, &c.CodeHash, &c.ExpiresAt, &createdBy, &revokedAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlaceholderClaim{}, domain.ErrNotFound
		}
		return domain.PlaceholderClaim{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	c.TripID = uuid.UUID(tripID.Bytes)
	c.ParticipantID = uuid.UUID(participantID.Bytes)
	c.CreatedBy = uuid.UUID(createdBy.Bytes)
	c.RevokedAt = optionalTime(revokedAt)
	return c, nil
}
