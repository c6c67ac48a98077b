package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pesio-ai/be-plt-login/internal/logger"
	"github.com/pesio-ai/be-plt-login/internal/repository"
)

// RoleStore reads user role assignments and roles
type RoleStore interface {
	GetUserRole(ctx context.Context, userID string) (*repository.UserRole, error)
	GetByID(ctx context.Context, roleID string) (*repository.Role, error)
}

// EmployeeStore reads employee profiles
type EmployeeStore interface {
	GetByUserID(ctx context.Context, userID string) (*repository.Employee, error)
}

// InstitutionStore reads institutions and their branches
type InstitutionStore interface {
	GetMfi(ctx context.Context, mfiID string) (*repository.Mfi, error)
	GetBranch(ctx context.Context, branchID string) (*repository.Branch, error)
}

// Aggregator resolves the authorization context of a verified user
type Aggregator struct {
	roles        RoleStore
	employees    EmployeeStore
	institutions InstitutionStore
	log          *logger.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(roles RoleStore, employees EmployeeStore, institutions InstitutionStore, log *logger.Logger) *Aggregator {
	return &Aggregator{
		roles:        roles,
		employees:    employees,
		institutions: institutions,
		log:          log,
	}
}

// Resolve loads the role, employee, institution and branch of user and checks
// that each is Active. It stops at the first missing or inactive entity.
func (a *Aggregator) Resolve(ctx context.Context, user *repository.User) (AuthContext, error) {
	var (
		userRole    *repository.UserRole
		employee    *repository.Employee
		userRoleErr error
		employeeErr error
	)

	// Both lookups depend only on the user id. Errors are checked afterwards
	// in a fixed order so the reported failure does not depend on timing.
	var g errgroup.Group
	g.Go(func() error {
		userRole, userRoleErr = a.roles.GetUserRole(ctx, user.ID)
		return nil
	})
	g.Go(func() error {
		employee, employeeErr = a.employees.GetByUserID(ctx, user.ID)
		return nil
	})
	_ = g.Wait()

	if userRoleErr != nil {
		return nil, lookupError(userRoleErr, fmt.Sprintf("No role assigned to user %s", user.Username))
	}
	if employeeErr != nil {
		return nil, lookupError(employeeErr, fmt.Sprintf("No employee found for user %s", user.Username))
	}
	if employee.Status != repository.StatusActive {
		a.log.Warn().Str("user_id", user.ID).Str("employee_id", employee.ID).Str("status", employee.Status).Msg("Employee is not active")
		return nil, newError(Inactive, fmt.Sprintf("Employee %s is not active", employee.FullName), nil)
	}

	role, err := a.roles.GetByID(ctx, userRole.RoleID)
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("Role %s not found", userRole.RoleID))
	}
	if role.Status != repository.StatusActive {
		a.log.Warn().Str("user_id", user.ID).Str("role", role.Name).Str("status", role.Status).Msg("Role is not active")
		return nil, newError(Inactive, fmt.Sprintf("Role %s is not active", role.Name), nil)
	}

	principal := Principal{User: user, UserRole: userRole, Role: role, Employee: employee}

	if employee.MfiID == nil {
		return &PlainUser{Principal: principal}, nil
	}

	mfi, err := a.institutions.GetMfi(ctx, *employee.MfiID)
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("Institution %s not found", *employee.MfiID))
	}
	if mfi.Status != repository.StatusActive {
		a.log.Warn().Str("user_id", user.ID).Str("mfi_id", mfi.ID).Str("status", mfi.Status).Msg("Institution is not active")
		return nil, newError(Inactive, fmt.Sprintf("Institution %s is not active", mfi.Name), nil)
	}

	if employee.BranchID == nil {
		return &UserWithInstitution{Principal: principal, Mfi: mfi}, nil
	}

	branch, err := a.institutions.GetBranch(ctx, *employee.BranchID)
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("Branch %s not found", *employee.BranchID))
	}
	if branch.Status != repository.StatusActive {
		a.log.Warn().Str("user_id", user.ID).Str("branch_id", branch.ID).Str("status", branch.Status).Msg("Branch is not active")
		return nil, newError(Inactive, fmt.Sprintf("Branch %s is not active", branch.Name), nil)
	}

	return &UserWithInstitutionAndBranch{Principal: principal, Mfi: mfi, Branch: branch}, nil
}

// lookupError classifies a store failure. notFoundMsg is used for missing rows.
func lookupError(err error, notFoundMsg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return newError(NotFound, notFoundMsg, nil)
	}
	return newError(Unexpected, "Failed to load authorization context", err)
}
