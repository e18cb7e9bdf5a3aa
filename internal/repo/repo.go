// Package repo contains all database access logic for the trip planner.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here: only SQL and type mapping.
//
// Store is the port the service layer depends on: every engine operation runs
// inside Store.WithTx against the Repos bundle it receives. The memstore
// subpackage provides an in-memory Store for tests.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repos bundles every repository bound to the same transaction.
type Repos struct {
	Users        UserRepo
	Trips        TripRepo
	Participants ParticipantRepo
	Invites      InviteRepo
	Claims       ClaimRepo
	Proposals    ProposalRepo
	Votes        VoteRepo
	Gear         GearRepo
}

// NewRepos binds all Postgres repositories to db.
// In production db is the pgx.Tx opened by Store.WithTx; in tests it is a
// transaction that is rolled back on cleanup.
func NewRepos(db db) Repos {
	return Repos{
		Users:        NewUserRepo(db),
		Trips:        NewTripRepo(db),
		Participants: NewParticipantRepo(db),
		Invites:      NewInviteRepo(db),
		Claims:       NewClaimRepo(db),
		Proposals:    NewProposalRepo(db),
		Votes:        NewVoteRepo(db),
		Gear:         NewGearRepo(db),
	}
}

// Store runs units of work atomically. Either everything fn did is committed
// or nothing is. fn must not retain the Repos after it returns.
type Store interface {
	WithTx(ctx context.Context, fn func(r Repos) error) error
}

// maxTxAttempts bounds how often a transaction aborted by a serialization
// failure or deadlock is re-run.
const maxTxAttempts = 3

// pgStore is the Postgres implementation of Store.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store backed by pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

// WithTx runs fn in a read-committed transaction, retrying when Postgres
// aborts it with a serialization failure or deadlock.
func (s *pgStore) WithTx(ctx context.Context, fn func(r Repos) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
			return fn(NewRepos(tx))
		})
		if !IsRetryable(err) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("repo.Store.WithTx: %w", err)
	}
	return nil
}

// participantsTripUserKey is the UNIQUE (trip_id, user_id) constraint. Two
// concurrent claims by one user race on it; the loser reruns and merges into
// the winner's row.
const participantsTripUserKey = "participants_trip_user_key"

// IsRetryable reports whether err is a transient transaction conflict that is
// safe to retry from the start of the transaction.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", // serialization_failure
		"40P01": // deadlock_detected
		return true
	case "23505": // unique_violation
		return pgErr.ConstraintName == participantsTripUserKey
	}
	return false
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// collect drains rows through scan, closing rows when done.
// The returned slice is never nil so callers can range or encode it directly.
func collect[T any](rows pgx.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
