package handler

import (
	"fmt"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

type createInviteRequest struct {
	TTLMinutes *int `json:"ttl_minutes,omitempty"`
	MaxUses    *int `json:"max_uses,omitempty"`
}

type redeemRequest struct {
	Code        string  `json:"code"`
	DisplayName *string `json:"display_name,omitempty"`
}

type inviteResponse struct {
	ID        openapi_types.UUID `json:"id"`
	TripID    openapi_types.UUID `json:"trip_id"`
	ExpiresAt time.Time          `json:"expires_at"`
	MaxUses   int                `json:"max_uses"`
	Uses      int                `json:"uses"`
	RevokedAt *time.Time         `json:"revoked_at,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// issuedInviteResponse is the only response that ever carries a plaintext code.
type issuedInviteResponse struct {
	inviteResponse
	Code string `json:"code"`
}

// CreateInvite handles POST /trips/{tripID}/invites.
func (s *Server) CreateInvite(w http.ResponseWriter, r *http.Request) {
	req, err := parseTripRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body createInviteRequest
	if err := decodeJSON(r, &body, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	ttl, err := minutes(body.TTLMinutes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	issued, err := s.svc.Invites.Create(r.Context(), req.tripID, req.caller, ttl, body.MaxUses)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, issuedInviteResponse{inviteResponse: inviteToResponse(issued.Invite), Code: issued.Code})
}

// ListInvites handles GET /trips/{tripID}/invites.
func (s *Server) ListInvites(w http.ResponseWriter, r *http.Request) {
	req, err := parseTripRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Invites.List(r.Context(), req.tripID, req.caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]inviteResponse, len(list))
	for i, inv := range list {
		out[i] = inviteToResponse(inv)
	}
	writeJSON(w, http.StatusOK, out)
}

// RevokeInvite handles DELETE /trips/{tripID}/invites/{inviteID}.
func (s *Server) RevokeInvite(w http.ResponseWriter, r *http.Request) {
	req, err := parseTripRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	inviteID, err := pathUUID(r, "inviteID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.svc.Invites.Revoke(r.Context(), req.tripID, req.caller, inviteID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RedeemInvite handles POST /invites/redeem. The response is the caller's
// participant row whether they just joined or already belonged to the trip.
func (s *Server) RedeemInvite(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body redeemRequest
	if err := decodeJSON(r, &body, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Invites.Redeem(r.Context(), who, body.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, participantToResponse(p))
}

func inviteToResponse(inv domain.InviteCode) inviteResponse {
	return inviteResponse{
		ID:        inv.ID,
		TripID:    inv.TripID,
		ExpiresAt: inv.ExpiresAt,
		MaxUses:   inv.MaxUses,
		Uses:      inv.Uses,
		RevokedAt: inv.RevokedAt,
		CreatedAt: inv.CreatedAt,
	}
}

// maxTTLMinutes caps ttl_minutes at one year.
const maxTTLMinutes = 366 * 24 * 60

// minutes converts an optional minute count from a request body.
func minutes(n *int) (*time.Duration, error) {
	if n == nil {
		return nil, nil
	}
	if *n <= 0 {
		return nil, fmt.Errorf("%w: ttl_minutes must be positive", domain.ErrValidation)
	}
	if *n > maxTTLMinutes {
		return nil, fmt.Errorf("%w: ttl_minutes must be at most %d", domain.ErrValidation, maxTTLMinutes)
	}
	d := time.Duration(*n) * time.Minute
	return &d, nil
}
