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

// VoteRepo defines the persistence operations for the three vote ledgers.
// Each ledger has a unique constraint on (option_id, participant_id).
type VoteRepo interface {
	// Add records a vote. Idempotent: created is false if the vote existed.
	Add(ctx context.Context, kind domain.VoteKind, optionID, participantID uuid.UUID) (created bool, err error)

	// Remove deletes a vote. Idempotent: removed is false if there was none.
	Remove(ctx context.Context, kind domain.VoteKind, optionID, participantID uuid.UUID) (removed bool, err error)

	// ListByParticipant returns every vote the participant holds in a ledger.
	ListByParticipant(ctx context.Context, kind domain.VoteKind, participantID uuid.UUID) ([]domain.Vote, error)

	// ListByTrip returns every vote in a ledger cast on the trip's options.
	ListByTrip(ctx context.Context, kind domain.VoteKind, tripID uuid.UUID) ([]domain.Vote, error)

	// Reassign moves the votes held by from onto to. A vote from holds on an
	// option to already voted for is dropped rather than moved.
	Reassign(ctx context.Context, kind domain.VoteKind, from, to uuid.UUID) (moved, dropped int, err error)
}

type pgVoteRepo struct {
	db db
}

// NewVoteRepo constructs a VoteRepo backed by the provided db connection.
func NewVoteRepo(db db) VoteRepo {
	return &pgVoteRepo{db: db}
}

// voteTables maps each ledger to its vote table and option table.
var voteTables = map[domain.VoteKind][2]string{
	domain.VoteDate:        {"date_votes", "date_options"},
	domain.VoteDestination: {"destination_votes", "destinations"},
	domain.VoteTerm:        {"term_votes", "term_proposals"},
}

func voteTable(kind domain.VoteKind) (votes, options string, err error) {
	t, ok := voteTables[kind]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown vote kind %q", domain.ErrValidation, kind)
	}
	return t[0], t[1], nil
}

func (r *pgVoteRepo) Add(ctx context.Context, kind domain.VoteKind, optionID, participantID uuid.UUID) (bool, error) {
	table, _, err := voteTable(kind)
	if err != nil {
		return false, fmt.Errorf("repo.VoteRepo.Add: %w", err)
	}
	q := fmt.Sprintf(`
		INSERT INTO %s (option_id, participant_id)
		VALUES (@option_id, @participant_id)
		ON CONFLICT (option_id, participant_id) DO NOTHING`, table)

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"option_id": optionID, "participant_id": participantID})
	if err != nil {
		return false, fmt.Errorf("repo.VoteRepo.Add: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgVoteRepo) Remove(ctx context.Context, kind domain.VoteKind, optionID, participantID uuid.UUID) (bool, error) {
	table, _, err := voteTable(kind)
	if err != nil {
		return false, fmt.Errorf("repo.VoteRepo.Remove: %w", err)
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE option_id = @option_id AND participant_id = @participant_id`, table)

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"option_id": optionID, "participant_id": participantID})
	if err != nil {
		return false, fmt.Errorf("repo.VoteRepo.Remove: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgVoteRepo) ListByParticipant(ctx context.Context, kind domain.VoteKind, participantID uuid.UUID) ([]domain.Vote, error) {
	table, _, err := voteTable(kind)
	if err != nil {
		return nil, fmt.Errorf("repo.VoteRepo.ListByParticipant: %w", err)
	}
	q := fmt.Sprintf(`
		SELECT id, option_id, participant_id, created_at
		FROM %s
		WHERE participant_id = @participant_id
		ORDER BY created_at, id`, table)

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"participant_id": participantID})
	if err != nil {
		return nil, fmt.Errorf("repo.VoteRepo.ListByParticipant: %w", err)
	}
	list, err := collect(rows, scanVote(kind))
	if err != nil {
		return nil, fmt.Errorf("repo.VoteRepo.ListByParticipant: %w", err)
	}
	return list, nil
}

func (r *pgVoteRepo) ListByTrip(ctx context.Context, kind domain.VoteKind, tripID uuid.UUID) ([]domain.Vote, error) {
	table, options, err := voteTable(kind)
	if err != nil {
		return nil, fmt.Errorf("repo.VoteRepo.ListByTrip: %w", err)
	}
	q := fmt.Sprintf(`
		SELECT v.id, v.option_id, v.participant_id, v.created_at
		FROM %s v
		JOIN %s o ON o.id = v.option_id
		WHERE o.trip_id = @trip_id
		ORDER BY v.created_at, v.id`, table, options)

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.VoteRepo.ListByTrip: %w", err)
	}
	list, err := collect(rows, scanVote(kind))
	if err != nil {
		return nil, fmt.Errorf("repo.VoteRepo.ListByTrip: %w", err)
	}
	return list, nil
}

// Reassign drops the overlapping votes first so the UPDATE cannot collide
// with the (option_id, participant_id) constraint.
func (r *pgVoteRepo) Reassign(ctx context.Context, kind domain.VoteKind, from, to uuid.UUID) (int, int, error) {
	table, _, err := voteTable(kind)
	if err != nil {
		return 0, 0, fmt.Errorf("repo.VoteRepo.Reassign: %w", err)
	}
	drop := fmt.Sprintf(`
		DELETE FROM %[1]s v
		WHERE v.participant_id = @from
		  AND EXISTS (SELECT 1 FROM %[1]s s WHERE s.option_id = v.option_id AND s.participant_id = @to)`, table)
	move := fmt.Sprintf(`UPDATE %s SET participant_id = @to WHERE participant_id = @from`, table)
	args := pgx.NamedArgs{"from": from, "to": to}

	dropped, err := r.db.Exec(ctx, drop, args)
	if err != nil {
		return 0, 0, fmt.Errorf("repo.VoteRepo.Reassign: drop: %w", err)
	}
	moved, err := r.db.Exec(ctx, move, args)
	if err != nil {
		return 0, 0, fmt.Errorf("repo.VoteRepo.Reassign: move: %w", err)
	}
	return int(moved.RowsAffected()), int(dropped.RowsAffected()), nil
}

func scanVote(kind domain.VoteKind) func(scanner) (domain.Vote, error) {
	return func(s scanner) (domain.Vote, error) {
		var (
			v             domain.Vote
			id            pgtype.UUID
			optionID      pgtype.UUID
			participantID pgtype.UUID
		)
		if err := s.Scan(&id, &optionID, &participantID, &v.CreatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Vote{}, domain.ErrNotFound
			}
			return domain.Vote{}, err
		}
		v.ID = uuid.UUID(id.Bytes)
		v.Kind = kind
		v.OptionID = uuid.UUID(optionID.Bytes)
		v.ParticipantID = uuid.UUID(participantID.Bytes)
		return v, nil
	}
}
