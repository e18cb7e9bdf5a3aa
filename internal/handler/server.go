// Package handler implements the HTTP surface of the trip planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, etc.) but share the same Server struct so they
// can access its dependencies. Handlers only translate HTTP to service calls
// and service errors back to HTTP; every rule lives in the service layer.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

// The servicer interfaces below are defined here, in the consumer package,
// so handler tests can inject function-field mocks.

type TripServicer interface {
	Create(ctx context.Context, caller uuid.UUID, name string) (domain.Trip, error)
	GetByID(ctx context.Context, tripID, caller uuid.UUID) (domain.Trip, error)
	ListForUser(ctx context.Context, caller uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Delete(ctx context.Context, tripID, caller uuid.UUID) error
}

type ParticipantServicer interface {
	AddPlaceholder(ctx context.Context, tripID, caller uuid.UUID, displayName string) (domain.Participant, error)
	Rename(ctx context.Context, tripID, caller, participantID uuid.UUID, name string) (domain.Participant, error)
	RenameSelf(ctx context.Context, tripID, caller uuid.UUID, name string) (domain.Participant, error)
	Remove(ctx context.Context, tripID, caller, participantID uuid.UUID) error
	List(ctx context.Context, tripID, caller uuid.UUID) ([]domain.Participant, error)
}

type InviteServicer interface {
	Create(ctx context.Context, tripID, caller uuid.UUID, ttl *time.Duration, maxUses *int) (service.IssuedInvite, error)
	Redeem(ctx context.Context, caller uuid.UUID, rawCode string) (domain.Participant, error)
	Revoke(ctx context.Context, tripID, caller, inviteID uuid.UUID) (domain.InviteCode, error)
	List(ctx context.Context, tripID, caller uuid.UUID) ([]domain.InviteCode, error)
}

type ClaimServicer interface {
	Issue(ctx context.Context, tripID, caller, participantID uuid.UUID, ttl *time.Duration) (service.IssuedClaim, error)
	Redeem(ctx context.Context, caller uuid.UUID, rawCode string, displayName *string) (domain.Participant, error)
}

type ProposalServicer interface {
	Create(ctx context.Context, kind domain.ProposalKind, tripID, caller uuid.UUID, title string) (domain.Proposal, error)
	List(ctx context.Context, kind domain.ProposalKind, tripID, caller uuid.UUID) ([]domain.Proposal, error)
	Delete(ctx context.Context, kind domain.ProposalKind, tripID, caller, proposalID uuid.UUID) error
}

type VoteServicer interface {
	CastSelf(ctx context.Context, kind domain.VoteKind, tripID, optionID, caller uuid.UUID) error
	RetractSelf(ctx context.Context, kind domain.VoteKind, tripID, optionID, caller uuid.UUID) error
	CastProxy(ctx context.Context, kind domain.VoteKind, tripID, optionID, caller, participantID uuid.UUID) error
	RetractProxy(ctx context.Context, kind domain.VoteKind, tripID, optionID, caller, participantID uuid.UUID) error
}

type SelectionServicer interface {
	Choose(ctx context.Context, kind domain.ProposalKind, tripID, caller, proposalID uuid.UUID) error
	Unchoose(ctx context.Context, kind domain.ProposalKind, tripID, caller, proposalID uuid.UUID) error
}

type GearServicer interface {
	Assign(ctx context.Context, tripID, caller, participantID uuid.UUID, item string) (domain.GearAssignment, error)
	Unassign(ctx context.Context, tripID, caller, participantID uuid.UUID, item string) error
	List(ctx context.Context, tripID, caller uuid.UUID) ([]domain.GearAssignment, error)
}

type TallyServicer interface {
	Tally(ctx context.Context, tripID, caller uuid.UUID) ([]domain.TallyRow, error)
}

// Services bundles the dependencies of Server. Nil fields are allowed in
// tests that only exercise other routes.
type Services struct {
	Trips        TripServicer
	Participants ParticipantServicer
	Invites      InviteServicer
	Claims       ClaimServicer
	Proposals    ProposalServicer
	Votes        VoteServicer
	Selection    SelectionServicer
	Gear         GearServicer
	Tally        TallyServicer
}

// Server holds every handler dependency.
type Server struct {
	svc Services
	log *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger discards output.
func NewServer(svc Services, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{svc: svc, log: log}
}

// Handler returns the API router. auth wraps every route except /healthz and
// /openapi.yaml, and must put the caller id in the request context
// (see middleware.NewAuthHandler).
func (s *Server) Handler(auth func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/trips", s.CreateTrip)
		r.Get("/trips", s.ListTrips)
		r.Post("/invites/redeem", s.RedeemInvite)
		r.Post("/claims/redeem", s.RedeemClaim)

		r.Route("/trips/{tripID}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Delete("/", s.DeleteTrip)

			r.Get("/participants", s.ListParticipants)
			r.Post("/participants/placeholders", s.AddPlaceholder)
			r.Put("/participants/me", s.RenameSelf)
			r.Put("/participants/{participantID}", s.RenameParticipant)
			r.Delete("/participants/{participantID}", s.RemoveParticipant)
			r.Post("/participants/{participantID}/claims", s.IssueClaim)

			r.Post("/invites", s.CreateInvite)
			r.Get("/invites", s.ListInvites)
			r.Delete("/invites/{inviteID}", s.RevokeInvite)

			r.Get("/gear", s.ListGear)
			r.Put("/gear/{participantID}", s.AssignGear)
			r.Delete("/gear/{participantID}/{item}", s.UnassignGear)

			r.Get("/tally", s.GetTally)

			r.Route("/{kind}", func(r chi.Router) {
				r.Post("/", s.CreateProposal)
				r.Get("/", s.ListProposals)
				r.Delete("/{proposalID}", s.DeleteProposal)
				r.Put("/{proposalID}/choose", s.ChooseProposal)
				r.Delete("/{proposalID}/choose", s.UnchooseProposal)
				r.Put("/{proposalID}/votes/me", s.CastSelfVote)
				r.Delete("/{proposalID}/votes/me", s.RetractSelfVote)
				r.Put("/{proposalID}/votes/{participantID}", s.CastProxyVote)
				r.Delete("/{proposalID}/votes/{participantID}", s.RetractProxyVote)
			})
		})
	})
	return r
}
