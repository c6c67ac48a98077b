package repository

import (
	"context"
	"fmt"

	"github.com/pesio-ai/be-plt-login/internal/logger"
)

// InstitutionRepository reads institutions (MFIs) and their branches
type InstitutionRepository struct {
	db  Querier
	log *logger.Logger
}

// NewInstitutionRepository creates a new institution repository
func NewInstitutionRepository(db Querier, log *logger.Logger) *InstitutionRepository {
	return &InstitutionRepository{
		db:  db,
		log: log,
	}
}

// GetMfi retrieves an institution by ID
func (r *InstitutionRepository) GetMfi(ctx context.Context, mfiID string) (*Mfi, error) {
	m := &Mfi{}

	query := `
		SELECT oid, mfi_name, COALESCE(license_number, ''), status
		FROM mfi
		WHERE oid = $1
	`

	err := r.db.QueryRow(ctx, query, mfiID).Scan(&m.ID, &m.Name, &m.LicenseNumber, &m.Status)
	if notFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mfi: %w", err)
	}

	return m, nil
}

// GetBranch retrieves a branch by ID
func (r *InstitutionRepository) GetBranch(ctx context.Context, branchID string) (*Branch, error) {
	b := &Branch{}

	query := `
		SELECT oid, branch_code, branch_name, status
		FROM branch
		WHERE oid = $1
	`

	err := r.db.QueryRow(ctx, query, branchID).Scan(&b.ID, &b.Code, &b.Name, &b.Status)
	if notFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}

	return b, nil
}
