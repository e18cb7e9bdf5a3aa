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

// ParticipantRepo defines the persistence operations for trip participants.
// All single-row operations are scoped by tripID to enforce ownership.
type ParticipantRepo interface {
	// Create inserts a participant row as given. Used for placeholders, which
	// have no uniqueness key beyond their id.
	Create(ctx context.Context, p domain.Participant) (domain.Participant, error)

	// EnsureUser inserts a real participant for (p.TripID, *p.UserID) unless one
	// already exists, in which case the existing row is returned unchanged and
	// created is false. Safe under concurrent calls: the unique constraint on
	// (trip_id, user_id) decides the single winner.
	EnsureUser(ctx context.Context, p domain.Participant) (result domain.Participant, created bool, err error)

	// GetByID returns domain.ErrNotFound if the participant is not in the trip.
	GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Participant, error)

	// GetByUser returns the caller's participant row in the trip, or
	// domain.ErrNotFound when the user has none.
	GetByUser(ctx context.Context, tripID, userID uuid.UUID) (domain.Participant, error)

	// ListByTrip returns all participants of a trip ordered by creation time.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Participant, error)

	// CountPlaceholders returns how many unclaimed placeholders the trip has.
	CountPlaceholders(ctx context.Context, tripID uuid.UUID) (int, error)

	// UpdateName sets the display name. Returns domain.ErrNotFound if the
	// participant is not in the trip.
	UpdateName(ctx context.Context, tripID, id uuid.UUID, name string) (domain.Participant, error)

	// Claim links a placeholder to userID. The update only applies while the row
	// is still a placeholder; otherwise domain.ErrNotFound is returned and
	// nothing changes.
	Claim(ctx context.Context, tripID, id, userID uuid.UUID, name string, at time.Time) (domain.Participant, error)

	// Delete removes a participant; votes and gear assignments cascade.
	Delete(ctx context.Context, tripID, id uuid.UUID) error
}

type pgParticipantRepo struct {
	db db
}

// NewParticipantRepo constructs a ParticipantRepo backed by the provided db connection.
func NewParticipantRepo(db db) ParticipantRepo {
	return &pgParticipantRepo{db: db}
}

const participantColumns = `id, trip_id, user_id, display_name, is_placeholder, claimed_at, created_by, created_at`

func (r *pgParticipantRepo) Create(ctx context.Context, p domain.Participant) (domain.Participant, error) {
	const q = `
		INSERT INTO participants (trip_id, user_id, display_name, is_placeholder, created_by)
		VALUES (@trip_id, @user_id, @display_name, @is_placeholder, @created_by)
		RETURNING ` + participantColumns

	result, err := scanParticipant(r.db.QueryRow(ctx, q, participantArgs(p)))
	if err != nil {
		return domain.Participant{}, fmt.Errorf("repo.ParticipantRepo.Create: %w", err)
	}
	return result, nil
}

// EnsureUser relies on ON CONFLICT DO NOTHING returning no row when the
// (trip_id, user_id) pair already exists; the follow-up SELECT then sees the
// committed winner.
func (r *pgParticipantRepo) EnsureUser(ctx context.Context, p domain.Participant) (domain.Participant, bool, error) {
	if p.UserID == nil {
		return domain.Participant{}, false, fmt.Errorf("repo.ParticipantRepo.EnsureUser: %w: user id is required", domain.ErrValidation)
	}

	const q = `
		INSERT INTO participants (trip_id, user_id, display_name, is_placeholder, created_by)
		VALUES (@trip_id, @user_id, @display_name, false, @created_by)
		ON CONFLICT (trip_id, user_id) DO NOTHING
		RETURNING ` + participantColumns

	result, err := scanParticipant(r.db.QueryRow(ctx, q, participantArgs(p)))
	if err == nil {
		return result, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Participant{}, false, fmt.Errorf("repo.ParticipantRepo.EnsureUser: %w", err)
	}

	existing, err := r.GetByUser(ctx, p.TripID, *p.UserID)
	if err != nil {
		return domain.Participant{}, false, fmt.Errorf("repo.ParticipantRepo.EnsureUser: %w", err)
	}
	return existing, false, nil
}

func (r *pgParticipantRepo) GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Participant, error) {
	const q = `SELECT ` + participantColumns + ` FROM participants WHERE trip_id = @trip_id AND id = @id`

	result, err := scanParticipant(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": id}))
	if err != nil {
		return domain.Participant{}, fmt.Errorf("repo.ParticipantRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgParticipantRepo) GetByUser(ctx context.Context, tripID, userID uuid.UUID) (domain.Participant, error) {
	const q = `SELECT ` + participantColumns + ` FROM participants WHERE trip_id = @trip_id AND user_id = @user_id`

	result, err := scanParticipant(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID}))
	if err != nil {
		return domain.Participant{}, fmt.Errorf("repo.ParticipantRepo.GetByUser: %w", err)
	}
	return result, nil
}

func (r *pgParticipantRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Participant, error) {
	const q = `
		SELECT ` + participantColumns + `
		FROM participants
		WHERE trip_id = @trip_id
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ParticipantRepo.ListByTrip: %w", err)
	}
	list, err := collect(rows, scanParticipant)
	if err != nil {
		return nil, fmt.Errorf("repo.ParticipantRepo.ListByTrip: %w", err)
	}
	return list, nil
}

func (r *pgParticipantRepo) CountPlaceholders(ctx context.Context, tripID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM participants WHERE trip_id = @trip_id AND is_placeholder`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.ParticipantRepo.CountPlaceholders: %w", err)
	}
	return n, nil
}

func (r *pgParticipantRepo) UpdateName(ctx context.Context, tripID, id uuid.UUID, name string) (domain.Participant, error) {
	const q = `
		UPDATE participants
		SET display_name = @display_name
		WHERE trip_id = @trip_id AND id = @id
		RETURNING ` + participantColumns

	args := pgx.NamedArgs{"trip_id": tripID, "id": id, "display_name": name}
	result, err := scanParticipant(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Participant{}, fmt.Errorf("repo.ParticipantRepo.UpdateName: %w", err)
	}
	return result, nil
}

func (r *pgParticipantRepo) Claim(ctx context.Context, tripID, id, userID uuid.UUID, name string, at time.Time) (domain.Participant, error) {
	const q = `
		UPDATE participants
		SET user_id        = @user_id,
		    display_name   = @display_name,
		    is_placeholder = false,
		    claimed_at     = @claimed_at
		WHERE trip_id = @trip_id AND id = @id AND is_placeholder
		RETURNING ` + participantColumns

	args := pgx.NamedArgs{
		"trip_id":      tripID,
		"id":           id,
		"user_id":      userID,
		"display_name": name,
		"claimed_at":   at,
	}
	result, err := scanParticipant(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Participant{}, fmt.Errorf("repo.ParticipantRepo.Claim: %w", err)
	}
	return result, nil
}

func (r *pgParticipantRepo) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	const q = `DELETE FROM participants WHERE trip_id = @trip_id AND id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": id})
	if err != nil {
		return fmt.Errorf("repo.ParticipantRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ParticipantRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func participantArgs(p domain.Participant) pgx.NamedArgs {
	return pgx.NamedArgs{
		"trip_id":        p.TripID,
		"user_id":        p.UserID, // nil becomes NULL
		"display_name":   p.DisplayName,
		"is_placeholder": p.IsPlaceholder,
		"created_by":     p.CreatedBy,
	}
}

func scanParticipant(s scanner) (domain.Participant, error) {
	var (
		p         domain.Participant
		id        pgtype.UUID
		tripID    pgtype.UUID
		userID    pgtype.UUID
		claimedAt pgtype.Timestamptz
		createdBy pgtype.UUID
	)
	err := s.Scan(&id, &tripID, &userID, &p.DisplayName, &p.IsPlaceholder, &claimedAt, &createdBy, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Participant{}, domain.ErrNotFound
		}
		return domain.Participant{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	p.TripID = uuid.UUID(tripID.Bytes)
	p.UserID = optionalUUID(userID)
	p.ClaimedAt = optionalTime(claimedAt)
	p.CreatedBy = uuid.UUID(createdBy.Bytes)
	return p, nil
}
