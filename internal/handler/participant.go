package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

type displayNameRequest struct {
	DisplayName string `json:"display_name"`
}

type participantResponse struct {
	ID            openapi_types.UUID  `json:"id"`
	TripID        openapi_types.UUID  `json:"trip_id"`
	UserID        *openapi_types.UUID `json:"user_id,omitempty"`
	DisplayName   string              `json:"display_name"`
	IsPlaceholder bool                `json:"is_placeholder"`
	ClaimedAt     *time.Time          `json:"claimed_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// ListParticipants handles GET /trips/{tripID}/participants.
func (s *Server) ListParticipants(w http.ResponseWriter, r *http.Request) {
	req, err := parseTripRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Participants.List(r.Context(), req.tripID, req.caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]participantResponse, len(list))
	for i, p := range list {
		out[i] = participantToResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// AddPlaceholder handles POST /trips/{tripID}/participants/placeholders.
// The body is optional; a missing name becomes "Guest N".
func (s *Server) AddPlaceholder(w http.ResponseWriter, r *http.Request) {
	req, err := parseTripRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body displayNameRequest
	if err := decodeJSON(r, &body, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Participants.AddPlaceholder(r.Context(), req.tripID, req.caller, body.DisplayName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, participantToResponse(p))
}

// RenameSelf handles PUT /trips/{tripID}/participants/me.
func (s *Server) RenameSelf(w http.ResponseWriter, r *http.Request) {
	req, err := parseTripRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body displayNameRequest
	if err := decodeJSON(r, &body, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Participants.RenameSelf(r.Context(), req.tripID, req.caller, body.DisplayName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, participantToResponse(p))
}

// RenameParticipant handles PUT /trips/{tripID}/participants/{participantID}.
func (s *Server) RenameParticipant(w http.ResponseWriter, r *http.Request) {
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
	var body displayNameRequest
	if err := decodeJSON(r, &body, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Participants.Rename(r.Context(), req.tripID, req.caller, participantID, body.DisplayName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, participantToResponse(p))
}

// RemoveParticipant handles DELETE /trips/{tripID}/participants/{participantID}.
func (s *Server) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
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
	if err := s.svc.Participants.Remove(r.Context(), req.tripID, req.caller, participantID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func participantToResponse(p domain.Participant) participantResponse {
	return participantResponse{
		ID:            p.ID,
		TripID:        p.TripID,
		UserID:        p.UserID,
		DisplayName:   p.DisplayName,
		IsPlaceholder: p.IsPlaceholder,
		ClaimedAt:     p.ClaimedAt,
		CreatedAt:     p.CreatedAt,
	}
}
