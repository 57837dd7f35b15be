package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/stackplate/internal/server/domain"
	"github.com/aussiebroadwan/stackplate/internal/server/store"
)

type UserService struct {
	Store store.Store
}

// GetUser fetches a user by uuid.
func (s *UserService) GetUser(ctx context.Context, userUUID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUUID(ctx, userUUID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserDoesNotExist
	}
	return u, err
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

func (s *UserService) DeleteUser(ctx context.Context, userUUID string) error {
	if userUUID == "" {
		return ErrMissingFields
	}
	err := s.Store.Users().DeleteUser(ctx, userUUID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserDoesNotExist
	}
	return err
}
