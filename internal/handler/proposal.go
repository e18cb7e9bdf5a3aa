package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

type createProposalRequest struct {
	Title string `json:"title"`
}

type proposalResponse struct {
	ID        openapi_types.UUID `json:"id"`
	Kind      string             `json:"kind"`
	TripID    openapi_types.UUID `json:"trip_id"`
	Title     string             `json:"title"`
	IsChosen  bool               `json:"is_chosen"`
	CreatedBy openapi_types.UUID `json:"created_by"`
	CreatedAt time.Time          `json:"created_at"`
}

// proposalRequest is tripRequest plus the {kind} segment and, for item
// routes, the {proposalID}.
type proposalRequest struct {
	tripRequest
	kind       domain.ProposalKind
	proposalID uuid.UUID
}

func parseProposalRequest(r *http.Request, withID bool) (proposalRequest, error) {
	tr, err := parseTripRequest(r)
	if err != nil {
		return proposalRequest{}, err
	}
	kind, err := pathKind(r)
	if err != nil {
		return proposalRequest{}, err
	}
	req := proposalRequest{tripRequest: tr, kind: kind}
	if withID {
		if req.proposalID, err = pathUUID(r, "proposalID"); err != nil {
			return proposalRequest{}, err
		}
	}
	return req, nil
}

// CreateProposal handles POST /trips/{tripID}/{kind}.
func (s *Server) CreateProposal(w http.ResponseWriter, r *http.Request) {
	req, err := parseProposalRequest(r, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body createProposalRequest
	if err := decodeJSON(r, &body, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Proposals.Create(r.Context(), req.kind, req.tripID, req.caller, body.Title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposalToResponse(p))
}

// ListProposals handles GET /trips/{tripID}/{kind}.
func (s *Server) ListProposals(w http.ResponseWriter, r *http.Request) {
	req, err := parseProposalRequest(r, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Proposals.List(r.Context(), req.kind, req.tripID, req.caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]proposalResponse, len(list))
	for i, p := range list {
		out[i] = proposalToResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// DeleteProposal handles DELETE /trips/{tripID}/{kind}/{proposalID}.
func (s *Server) DeleteProposal(w http.ResponseWriter, r *http.Request) {
	req, err := parseProposalRequest(r, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Proposals.Delete(r.Context(), req.kind, req.tripID, req.caller, req.proposalID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChooseProposal handles PUT /trips/{tripID}/{kind}/{proposalID}/choose.
func (s *Server) ChooseProposal(w http.ResponseWriter, r *http.Request) {
	req, err := parseProposalRequest(r, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Selection.Choose(r.Context(), req.kind, req.tripID, req.caller, req.proposalID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnchooseProposal handles DELETE /trips/{tripID}/{kind}/{proposalID}/choose.
func (s *Server) UnchooseProposal(w http.ResponseWriter, r *http.Request) {
	req, err := parseProposalRequest(r, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Selection.Unchoose(r.Context(), req.kind, req.tripID, req.caller, req.proposalID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func proposalToResponse(p domain.Proposal) proposalResponse {
	return proposalResponse{
		ID:        p.ID,
		Kind:      string(p.Kind),
		TripID:    p.TripID,
		Title:     p.Title,
		IsChosen:  p.IsChosen,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
	}
}
