package middleware_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/middleware"
)

var testSecret = []byte("test-secret")

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// callerEcho writes the caller id from the context as the response body.
var callerEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(id.String()))
})

func TestAuthHandler_ValidToken(t *testing.T) {
	user := uuid.New()
	token, err := middleware.SignToken(testSecret, user, "Max", time.Hour)
	require.NoError(t, err)

	var hookedID uuid.UUID
	var hookedName string
	h := middleware.NewAuthHandler(testSecret, discard, func(_ context.Context, id uuid.UUID, name string) error {
		hookedID, hookedName = id, name
		return nil
	})(callerEcho)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.String(), rec.Body.String())
	assert.Equal(t, user, hookedID)
	assert.Equal(t, "Max", hookedName)
}

func TestAuthHandler_HookErrorDoesNotFailRequest(t *testing.T) {
	token, err := middleware.SignToken(testSecret, uuid.New(), "", time.Hour)
	require.NoError(t, err)
	h := middleware.NewAuthHandler(testSecret, discard, func(context.Context, uuid.UUID, string) error {
		return errors.New("db down")
	})(callerEcho)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_Rejects(t *testing.T) {
	user := uuid.New()
	expired, err := middleware.SignToken(testSecret, user, "", -time.Minute)
	require.NoError(t, err)
	wrongKey, err := middleware.SignToken([]byte("other"), user, "", time.Hour)
	require.NoError(t, err)
	notUUID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(testSecret)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: user.String(),
	}).SignedString(testSecret)
	require.NoError(t, err)

	cases := map[string]string{
		"missing header":   "",
		"wrong scheme":     "Basic abc",
		"empty token":      "Bearer ",
		"garbage":          "Bearer not-a-jwt",
		"expired":          "Bearer " + expired,
		"wrong key":        "Bearer " + wrongKey,
		"subject not uuid": "Bearer " + notUUID,
		"no expiry":        "Bearer " + noExpiry,
	}
	h := middleware.NewAuthHandler(testSecret, discard, nil)(callerEcho)
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/trips", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
		})
	}
}

func TestCallerFromContext_Empty(t *testing.T) {
	_, ok := middleware.CallerFromContext(context.Background())
	assert.False(t, ok)

	_, ok = middleware.CallerFromContext(middleware.WithCaller(context.Background(), uuid.Nil))
	assert.False(t, ok)
}
