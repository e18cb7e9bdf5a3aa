package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/middleware"
)

// kindSegments maps the plural path segment of each proposal list to its kind.
var kindSegments = map[string]domain.ProposalKind{
	"date-options":    domain.KindDateOption,
	"destinations":    domain.KindDestination,
	"transportations": domain.KindTransportation,
	"terms":           domain.KindTerm,
}

// pathUUID binds a uuid path parameter the way generated oapi-codegen
// wrappers do.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid format for parameter %s", errBadRequest, name)
	}
	return id, nil
}

// pathKind resolves the {kind} segment. Unknown segments are a 404: the
// route simply does not exist.
func pathKind(r *http.Request) (domain.ProposalKind, error) {
	seg := chi.URLParam(r, "kind")
	kind, ok := kindSegments[seg]
	if !ok {
		return "", fmt.Errorf("%w: no proposal list %q", domain.ErrNotFound, seg)
	}
	return kind, nil
}

// pathVoteKind resolves {kind} to a vote ledger. Transportations have none.
func pathVoteKind(r *http.Request) (domain.VoteKind, error) {
	kind, err := pathKind(r)
	if err != nil {
		return "", err
	}
	vk, ok := kind.VoteKind()
	if !ok {
		return "", fmt.Errorf("%w: %s cannot be voted on", domain.ErrValidation, kind)
	}
	return vk, nil
}

// queryInt binds an optional integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	var v *int
	err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid format for parameter %s", errBadRequest, name)
	}
	return v, nil
}

// caller returns the authenticated user id. The auth middleware guarantees
// one; a missing id means the router was wired without it.
func caller(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		return uuid.Nil, fmt.Errorf("handler: no authenticated caller in request context")
	}
	return id, nil
}

// tripRequest bundles the caller and trip id every trip-scoped route needs.
type tripRequest struct {
	caller uuid.UUID
	tripID uuid.UUID
}

func parseTripRequest(r *http.Request) (tripRequest, error) {
	who, err := caller(r)
	if err != nil {
		return tripRequest{}, err
	}
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		return tripRequest{}, err
	}
	return tripRequest{caller: who, tripID: tripID}, nil
}
