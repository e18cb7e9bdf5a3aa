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

// ProposalRepo defines the persistence operations shared by the four proposal
// lists: date options, destinations, transportations and term proposals.
// Each kind lives in its own table with the same shape.
type ProposalRepo interface {
	// Create inserts a new, unchosen proposal of p.Kind.
	Create(ctx context.Context, p domain.Proposal) (domain.Proposal, error)

	// GetByID returns domain.ErrNotFound if the proposal is not in the trip.
	GetByID(ctx context.Context, kind domain.ProposalKind, tripID, id uuid.UUID) (domain.Proposal, error)

	// ListByTrip returns the trip's proposals of a kind ordered by creation time.
	ListByTrip(ctx context.Context, kind domain.ProposalKind, tripID uuid.UUID) ([]domain.Proposal, error)

	// Delete removes a proposal; its votes cascade.
	Delete(ctx context.Context, kind domain.ProposalKind, tripID, id uuid.UUID) error

	// Choose marks id as the single chosen proposal of its kind in the trip,
	// clearing every sibling first. Callers must hold the trip lock.
	Choose(ctx context.Context, kind domain.ProposalKind, tripID, id uuid.UUID) error

	// Unchoose clears the chosen flag on id. Idempotent.
	Unchoose(ctx context.Context, kind domain.ProposalKind, tripID, id uuid.UUID) error
}

type pgProposalRepo struct {
	db db
}

// NewProposalRepo constructs a ProposalRepo backed by the provided db connection.
func NewProposalRepo(db db) ProposalRepo {
	return &pgProposalRepo{db: db}
}

// proposalTables maps each kind to its table. Only these constants are ever
// interpolated into SQL.
var proposalTables = map[domain.ProposalKind]string{
	domain.KindDateOption:     "date_options",
	domain.KindDestination:    "destinations",
	domain.KindTransportation: "transportations",
	domain.KindTerm:           "term_proposals",
}

func proposalTable(kind domain.ProposalKind) (string, error) {
	t, ok := proposalTables[kind]
	if !ok {
		return "", fmt.Errorf("%w: unknown proposal kind %q", domain.ErrValidation, kind)
	}
	return t, nil
}

const proposalColumns = `id, trip_id, title, is_chosen, created_by, created_at`

func (r *pgProposalRepo) Create(ctx context.Context, p domain.Proposal) (domain.Proposal, error) {
	table, err := proposalTable(p.Kind)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("repo.ProposalRepo.Create: %w", err)
	}
	q := fmt.Sprintf(`
		INSERT INTO %s (trip_id, title, created_by)
		VALUES (@trip_id, @title, @created_by)
		RETURNING %s`, table, proposalColumns)

	args := pgx.NamedArgs{"trip_id": p.TripID, "title": p.Title, "created_by": p.CreatedBy}
	result, err := scanProposal(p.Kind)(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("repo.ProposalRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgProposalRepo) GetByID(ctx context.Context, kind domain.ProposalKind, tripID, id uuid.UUID) (domain.Proposal, error) {
	table, err := proposalTable(kind)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("repo.ProposalRepo.GetByID: %w", err)
	}
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE trip_id = @trip_id AND id = @id`, proposalColumns, table)

	result, err := scanProposal(kind)(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": id}))
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("repo.ProposalRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgProposalRepo) ListByTrip(ctx context.Context, kind domain.ProposalKind, tripID uuid.UUID) ([]domain.Proposal, error) {
	table, err := proposalTable(kind)
	if err != nil {
		return nil, fmt.Errorf("repo.ProposalRepo.ListByTrip: %w", err)
	}
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE trip_id = @trip_id ORDER BY created_at, id`, proposalColumns, table)

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ProposalRepo.ListByTrip: %w", err)
	}
	list, err := collect(rows, scanProposal(kind))
	if err != nil {
		return nil, fmt.Errorf("repo.ProposalRepo.ListByTrip: %w", err)
	}
	return list, nil
}

func (r *pgProposalRepo) Delete(ctx context.Context, kind domain.ProposalKind, tripID, id uuid.UUID) error {
	table, err := proposalTable(kind)
	if err != nil {
		return fmt.Errorf("repo.ProposalRepo.Delete: %w", err)
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE trip_id = @trip_id AND id = @id`, table)

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": id})
	if err != nil {
		return fmt.Errorf("repo.ProposalRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ProposalRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// Choose runs the clear before the set. The partial unique index on
// (trip_id) WHERE is_chosen is checked row by row, so setting first would
// trip it whenever another sibling was chosen.
func (r *pgProposalRepo) Choose(ctx context.Context, kind domain.ProposalKind, tripID, id uuid.UUID) error {
	if !kind.Exclusive() {
		return fmt.Errorf("repo.ProposalRepo.Choose: %w: %s proposals cannot be chosen", domain.ErrValidation, kind)
	}
	table, err := proposalTable(kind)
	if err != nil {
		return fmt.Errorf("repo.ProposalRepo.Choose: %w", err)
	}

	unset := fmt.Sprintf(`UPDATE %s SET is_chosen = false WHERE trip_id = @trip_id AND is_chosen AND id <> @id`, table)
	set := fmt.Sprintf(`UPDATE %s SET is_chosen = true WHERE trip_id = @trip_id AND id = @id`, table)
	args := pgx.NamedArgs{"trip_id": tripID, "id": id}

	if _, err := r.db.Exec(ctx, unset, args); err != nil {
		return fmt.Errorf("repo.ProposalRepo.Choose: clear: %w", err)
	}
	tag, err := r.db.Exec(ctx, set, args)
	if err != nil {
		return fmt.Errorf("repo.ProposalRepo.Choose: set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ProposalRepo.Choose: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgProposalRepo) Unchoose(ctx context.Context, kind domain.ProposalKind, tripID, id uuid.UUID) error {
	table, err := proposalTable(kind)
	if err != nil {
		return fmt.Errorf("repo.ProposalRepo.Unchoose: %w", err)
	}
	q := fmt.Sprintf(`UPDATE %s SET is_chosen = false WHERE trip_id = @trip_id AND id = @id`, table)

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": id})
	if err != nil {
		return fmt.Errorf("repo.ProposalRepo.Unchoose: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ProposalRepo.Unchoose: %w", domain.ErrNotFound)
	}
	return nil
}

// scanProposal returns a scan func that stamps the kind, which is implied by
// the table rather than stored in a column.
func scanProposal(kind domain.ProposalKind) func(scanner) (domain.Proposal, error) {
	return func(s scanner) (domain.Proposal, error) {
		var (
			p         domain.Proposal
			id        pgtype.UUID
			tripID    pgtype.UUID
			createdBy pgtype.UUID
		)
		err := s.Scan(&id, &tripID, &p.Title, &p.IsChosen, &createdBy, &p.CreatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Proposal{}, domain.ErrNotFound
			}
			return domain.Proposal{}, err
		}
		p.ID = uuid.UUID(id.Bytes)
		p.Kind = kind
		p.TripID = uuid.UUID(tripID.Bytes)
		p.CreatedBy = uuid.UUID(createdBy.Bytes)
		return p, nil
	}
}
