package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type issueClaimRequest struct {
	TTLMinutes *int `json:"ttl_minutes,omitempty"`
}

type issuedClaimResponse struct {
	ID            openapi_types.UUID `json:"id"`
	TripID        openapi_types.UUID `json:"trip_id"`
	ParticipantID openapi_types.UUID `json:"participant_id"`
	ExpiresAt     time.Time          `json:"expires_at"`
	Code          string             `json:"code"`
}

// IssueClaim handles POST /trips/{tripID}/participants/{participantID}/claims.
func (s *Server) IssueClaim(w http.ResponseWriter, r *http.Request) {
	req, err := parseTripRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	participantID, err := pathUUID(r, "participantID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body issueClaimRequest
	if err := decodeJSON(r, &body, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	ttl, err := minutes(body.TTLMinutes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	issued, err := s.svc.Claims.Issue(r.Context(), req.tripID, req.caller, participantID, ttl)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, issuedClaimResponse{
		ID:            issued.Claim.ID,
		TripID:        issued.Claim.TripID,
		ParticipantID: issued.Claim.ParticipantID,
		ExpiresAt:     issued.Claim.ExpiresAt,
		Code:          issued.Code,
	})
}

// RedeemClaim handles POST /claims/redeem.
func (s *Server) RedeemClaim(w http.ResponseWriter, r *http.Request) {
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
	p, err := s.svc.Claims.Redeem(r.Context(), who, body.Code, body.DisplayName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, participantToResponse(p))
}
