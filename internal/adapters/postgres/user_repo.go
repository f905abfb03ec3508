package postgres

import (
	"context"
	"fmt"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/metrics"
)

// UserRepo implements ports.UserRepository with pgx.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetOrCreate returns the user with the given external id, creating it
// with the external id as default username when missing.
func (r *UserRepo) GetOrCreate(ctx context.Context, userID string) (*domain.User, error) {
	existing, err := r.getByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !isNoRows(err) {
		return nil, err
	}

	var created domain.User
	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO users (user_id, username) VALUES ($1, $1)
		RETURNING id, user_id, username, created_at
	`, userID).Scan(&created.ID, &created.UserID, &created.Username, &created.CreatedAt)
	if err == nil {
		return &created, nil
	}
	if !isUniqueViolation(err) {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	metrics.GetOrCreateConflicts.WithLabelValues("user").Inc()
	existing, err = r.getByUserID(ctx, userID)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: user id=%s", domain.ErrConflictUnresolved, userID)
	}
	return existing, err
}

func (r *UserRepo) getByUserID(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, username, created_at FROM users WHERE user_id = $1
	`, userID).Scan(&u.ID, &u.UserID, &u.Username, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername returns the user holding a display name, or
// domain.ErrUserNotFound when the name is unclaimed. Other errors are
// infrastructure failures and pass through unchanged.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, username, created_at FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.UserID, &u.Username, &u.CreatedAt)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, username)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUsername changes a user's display name. A racing claim of the
// same name surfaces as domain.ErrUsernameTaken.
func (r *UserRepo) UpdateUsername(ctx context.Context, id int64, username string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET username = $1 WHERE id = $2
	`, username, id)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", domain.ErrUsernameTaken, username)
	}
	return err
}
