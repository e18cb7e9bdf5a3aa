package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// UserService keeps the engine's copy of user profiles current.
type UserService struct {
	base
}

// NewUserService constructs a UserService backed by the provided Store.
func NewUserService(store repo.Store, opts ...Option) *UserService {
	return &UserService{base: newBase(store, opts)}
}

// Remember records the display name the identity provider reported for
// userID. A blank name leaves any stored profile untouched.
func (s *UserService) Remember(ctx context.Context, userID uuid.UUID, displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if userID == uuid.Nil || displayName == "" {
		return nil
	}
	if len([]rune(displayName)) > maxNameLength {
		displayName = string([]rune(displayName)[:maxNameLength])
	}
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		current, err := r.Users.GetByID(ctx, userID)
		if err == nil && current.DisplayName == displayName {
			return nil
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		_, err = r.Users.Upsert(ctx, domain.User{ID: userID, DisplayName: displayName})
		return err
	})
	if err != nil {
		return fmt.Errorf("service.UserService.Remember: %w", err)
	}
	return nil
}
