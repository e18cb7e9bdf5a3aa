package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails to parse or validate.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload. Subject carries the user's uuid; Name is the
// display name the identity provider knows the user by, if any.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type callerKey struct{}

// WithCaller returns a copy of ctx carrying the authenticated user id.
func WithCaller(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, callerKey{}, userID)
}

// CallerFromContext returns the user id stored by the auth middleware.
func CallerFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(callerKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// SignToken issues an HS256 token for userID. The API never issues tokens
// itself; this exists for tests and local tooling.
func SignToken(secret []byte, userID uuid.UUID, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates an HS256 token and extracts the user id and name.
func ParseToken(secret []byte, raw string) (uuid.UUID, string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return uuid.Nil, "", ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, "", ErrInvalidToken
	}
	return userID, claims.Name, nil
}

// AuthenticatedFunc is called once per authenticated request, before the
// next handler runs. Errors are logged and do not fail the request.
type AuthenticatedFunc func(ctx context.Context, userID uuid.UUID, name string) error

// NewAuthHandler returns a middleware that requires a valid
// "Authorization: Bearer <token>" header and stores the caller's user id in
// the request context. Failures get a 401 JSON error body.
func NewAuthHandler(secret []byte, log *slog.Logger, onAuthenticated AuthenticatedFunc) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				unauthorized(w, "missing bearer token")
				return
			}
			userID, name, err := ParseToken(secret, strings.TrimSpace(raw))
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			ctx := WithCaller(r.Context(), userID)
			if onAuthenticated != nil {
				if err := onAuthenticated(ctx, userID, name); err != nil {
					log.WarnContext(ctx, "auth hook failed",
						"user_id", userID.String(),
						"error", err,
						"request_id", chimiddleware.GetReqID(ctx),
					)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="trip-planner"`)
	w.WriteHeader(http.StatusUnauthorized)
	//nolint:errcheck
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": message},
	})
}
