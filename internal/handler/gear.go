package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

type assignGearRequest struct {
	Item string `json:"item"`
}

type gearResponse struct {
	ID            openapi_types.UUID `json:"id"`
	Item          string             `json:"item"`
	ParticipantID openapi_types.UUID `json:"participant_id"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ListGear handles GET /trips/{tripID}/gear.
func (s *Server) ListGear(w http.ResponseWriter, r *http.Request) {
	req, err := parseTripRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Gear.List(r.Context(), req.tripID, req.caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]gearResponse, len(list))
	for i, g := range list {
		out[i] = gearToResponse(g)
	}
	writeJSON(w, http.StatusOK, out)
}

// AssignGear handles PUT /trips/{tripID}/gear/{participantID}.
func (s *Server) AssignGear(w http.ResponseWriter, r *http.Request) {
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
	var body assignGearRequest
	if err := decodeJSON(r, &body, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.svc.Gear.Assign(r.Context(), req.tripID, req.caller, participantID, body.Item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gearToResponse(g))
}

// UnassignGear handles DELETE /trips/{tripID}/gear/{participantID}/{item}.
func (s *Server) UnassignGear(w http.ResponseWriter, r *http.Request) {
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
	item, err := url.PathUnescape(chi.URLParam(r, "item"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid item", errBadRequest))
		return
	}
	if err := s.svc.Gear.Unassign(r.Context(), req.tripID, req.caller, participantID, item); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func gearToResponse(g domain.GearAssignment) gearResponse {
	return gearResponse{
		ID:            g.ID,
		Item:          g.Item,
		ParticipantID: g.ParticipantID,
		CreatedAt:     g.CreatedAt,
	}
}
