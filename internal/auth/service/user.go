package service

import (
	"context"
	"errors"

	"github.com/showreelhq/showreel/internal/auth/domain"
	"github.com/showreelhq/showreel/internal/auth/store"
)

type UserService struct {
	Store store.Store
}

// GetProfile fetches the sanitized view of a user by id.
func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrUserNotFound
		}
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}
