package service

import (
	"github.com/pesio-ai/be-plt-login/internal/repository"
	"github.com/pesio-ai/be-plt-login/internal/session"
)

// Principal is the part of an authorization context every login resolves
type Principal struct {
	User     *repository.User
	UserRole *repository.UserRole
	Role     *repository.Role
	Employee *repository.Employee
}

// AuthContext is the resolved authorization context of a user. It is one of
// *PlainUser, *UserWithInstitution or *UserWithInstitutionAndBranch.
type AuthContext interface {
	Base() *Principal
	authContext()
}

// PlainUser is a head-office user with no institution
type PlainUser struct {
	Principal
}

// UserWithInstitution is a user attached to an institution but no branch
type UserWithInstitution struct {
	Principal
	Mfi *repository.Mfi
}

// UserWithInstitutionAndBranch is a user attached to a branch of an institution
type UserWithInstitutionAndBranch struct {
	Principal
	Mfi    *repository.Mfi
	Branch *repository.Branch
}

func (c *PlainUser) Base() *Principal                    { return &c.Principal }
func (c *UserWithInstitution) Base() *Principal          { return &c.Principal }
func (c *UserWithInstitutionAndBranch) Base() *Principal { return &c.Principal }

func (*PlainUser) authContext()                    {}
func (*UserWithInstitution) authContext()          {}
func (*UserWithInstitutionAndBranch) authContext() {}

// institutionOf returns the institution and branch of ac, nil when absent
func institutionOf(ac AuthContext) (*repository.Mfi, *repository.Branch) {
	switch c := ac.(type) {
	case *UserWithInstitutionAndBranch:
		return c.Mfi, c.Branch
	case *UserWithInstitution:
		return c.Mfi, nil
	default:
		return nil, nil
	}
}

// newSnapshot flattens ac into the cached session form
func newSnapshot(ac AuthContext, token string) *session.Snapshot {
	p := ac.Base()
	snap := &session.Snapshot{
		UserID:         p.User.ID,
		Username:       p.User.Username,
		Token:          token,
		UserStatus:     p.User.Status,
		UserRoleID:     p.UserRole.ID,
		RoleID:         p.Role.ID,
		RoleName:       p.Role.Name,
		RoleStatus:     p.Role.Status,
		EmployeeID:     p.Employee.ID,
		FullName:       p.Employee.FullName,
		Designation:    p.Employee.Designation,
		MobileNumber:   p.Employee.MobileNumber,
		Email:          p.Employee.Email,
		EmployeeStatus: p.Employee.Status,
	}

	mfi, branch := institutionOf(ac)
	if mfi != nil {
		snap.MfiID = &mfi.ID
		snap.MfiName = &mfi.Name
		snap.MfiLicenseNumber = &mfi.LicenseNumber
		snap.MfiStatus = &mfi.Status
	}
	if branch != nil {
		snap.BranchID = &branch.ID
		snap.BranchCode = &branch.Code
		snap.BranchName = &branch.Name
		snap.BranchStatus = &branch.Status
	}

	return snap
}
