package repository

import (
	"context"
	"fmt"

	"github.com/pesio-ai/be-plt-login/internal/logger"
)

// EmployeeRepository reads employee profiles
type EmployeeRepository struct {
	db  Querier
	log *logger.Logger
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db Querier, log *logger.Logger) *EmployeeRepository {
	return &EmployeeRepository{
		db:  db,
		log: log,
	}
}

// GetByUserID retrieves the employee profile of a user
func (r *EmployeeRepository) GetByUserID(ctx context.Context, userID string) (*Employee, error) {
	e := &Employee{}

	query := `
		SELECT oid, user_oid, full_name, COALESCE(designation, ''), COALESCE(mobile_number, ''),
		       COALESCE(email, ''), status, mfi_oid, branch_oid
		FROM employee
		WHERE user_oid = $1
	`

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&e.ID,
		&e.UserID,
		&e.FullName,
		&e.Designation,
		&e.MobileNumber,
		&e.Email,
		&e.Status,
		&e.MfiID,
		&e.BranchID,
	)
	if notFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}
