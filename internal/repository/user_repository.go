package repository

import (
	"context"
	"fmt"

	"github.com/pesio-ai/be-plt-login/internal/logger"
)

// UserRepository reads login accounts
type UserRepository struct {
	db  Querier
	log *logger.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db Querier, log *logger.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log,
	}
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	user := &User{}

	query := `
		SELECT oid, username, password, status, COALESCE(password_reset_required, ''),
		       created_on, updated_on
		FROM user_info
		WHERE username = $1
	`

	err := r.db.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Status,
		&user.PasswordResetRequired,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if notFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	r.log.Debug().Str("user_id", user.ID).Str("username", username).Msg("User loaded")

	return user, nil
}
