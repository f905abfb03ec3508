package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/ports"
)

// UserService manages bot users and their display names.
type UserService struct {
	users ports.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetOrCreate returns the user for an external chat id, creating it
// with the id as default username on first contact.
func (s *UserService) GetOrCreate(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetOrCreate(ctx, userID)
}

// SetUsername changes a user's globally unique display name.
func (s *UserService) SetUsername(ctx context.Context, userID, username string) error {
	if username == "" || username == "None" {
		return fmt.Errorf("%w: username %q is invalid", domain.ErrValidation, username)
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err == nil && existing != nil {
		return fmt.Errorf("%w: %s", domain.ErrUsernameTaken, username)
	}
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("check username %q: %w", username, err)
	}

	user, err := s.users.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	return s.users.UpdateUsername(ctx, user.ID, username)
}
