package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// CastSelfVote handles PUT /trips/{tripID}/{kind}/{proposalID}/votes/me.
func (s *Server) CastSelfVote(w http.ResponseWriter, r *http.Request) {
	s.selfVote(w, r, s.svc.Votes.CastSelf)
}

// RetractSelfVote handles DELETE /trips/{tripID}/{kind}/{proposalID}/votes/me.
func (s *Server) RetractSelfVote(w http.ResponseWriter, r *http.Request) {
	s.selfVote(w, r, s.svc.Votes.RetractSelf)
}

// CastProxyVote handles PUT /trips/{tripID}/{kind}/{proposalID}/votes/{participantID}.
func (s *Server) CastProxyVote(w http.ResponseWriter, r *http.Request) {
	s.proxyVote(w, r, s.svc.Votes.CastProxy)
}

// RetractProxyVote handles DELETE /trips/{tripID}/{kind}/{proposalID}/votes/{participantID}.
func (s *Server) RetractProxyVote(w http.ResponseWriter, r *http.Request) {
	s.proxyVote(w, r, s.svc.Votes.RetractProxy)
}

type selfVoteFunc func(ctx context.Context, kind domain.VoteKind, tripID, optionID, caller uuid.UUID) error

type proxyVoteFunc func(ctx context.Context, kind domain.VoteKind, tripID, optionID, caller, participantID uuid.UUID) error

func (s *Server) selfVote(w http.ResponseWriter, r *http.Request, fn selfVoteFunc) {
	req, err := parseProposalRequest(r, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	vk, err := pathVoteKind(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := fn(r.Context(), vk, req.tripID, req.proposalID, req.caller); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) proxyVote(w http.ResponseWriter, r *http.Request, fn proxyVoteFunc) {
	req, err := parseProposalRequest(r, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	vk, err := pathVoteKind(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	participantID, err := pathUUID(r, "participantID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := fn(r.Context(), vk, req.tripID, req.proposalID, req.caller, participantID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
