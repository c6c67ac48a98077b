package repository

import (
	"context"
	"fmt"

	"github.com/pesio-ai/be-plt-login/internal/logger"
)

// RoleRepository reads roles and user role assignments
type RoleRepository struct {
	db  Querier
	log *logger.Logger
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db Querier, log *logger.Logger) *RoleRepository {
	return &RoleRepository{
		db:  db,
		log: log,
	}
}

// GetUserRole retrieves the role assignment of a user. A user has a single
// assignment; if several exist the oldest wins.
func (r *RoleRepository) GetUserRole(ctx context.Context, userID string) (*UserRole, error) {
	ur := &UserRole{}

	query := `
		SELECT oid, user_oid, role_oid, created_on
		FROM user_role
		WHERE user_oid = $1
		ORDER BY created_on ASC
		LIMIT 1
	`

	err := r.db.QueryRow(ctx, query, userID).Scan(&ur.ID, &ur.UserID, &ur.RoleID, &ur.CreatedAt)
	if notFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user role: %w", err)
	}

	return ur, nil
}

// GetByID retrieves a role by ID
func (r *RoleRepository) GetByID(ctx context.Context, roleID string) (*Role, error) {
	role := &Role{}

	query := `
		SELECT oid, role_name, status
		FROM role
		WHERE oid = $1
	`

	err := r.db.QueryRow(ctx, query, roleID).Scan(&role.ID, &role.Name, &role.Status)
	if notFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	r.log.Debug().Str("role_id", role.ID).Str("role_name", role.Name).Msg("Role loaded")

	return role, nil
}
