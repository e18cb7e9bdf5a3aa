package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/handler"
)

// TestGetHealth_returns200WithOKStatus verifies that GET /healthz returns
// HTTP 200 and a JSON body of {"status":"ok"} without any token.
func TestGetHealth_returns200WithOKStatus(t *testing.T) {
	h := newHTTPHandler(handler.Services{})

	rec := do(t, h, http.MethodGet, "/healthz", nil, uuid.Nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
}

// TestGetOpenAPI_servesDocumentWithoutAuth verifies the embedded document is
// public and served as YAML.
func TestGetOpenAPI_servesDocumentWithoutAuth(t *testing.T) {
	h := newHTTPHandler(handler.Services{})

	rec := do(t, h, http.MethodGet, "/openapi.yaml", nil, uuid.Nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "openapi: 3.0.3")
}
