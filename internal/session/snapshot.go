package session

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the cached authorization context of a logged in user. It is a
// flat union of every field a login can resolve; institution and branch
// fields are nil when the user has no such association.
type Snapshot struct {
	UserID         string `json:"userOid"`
	Username       string `json:"username"`
	Token          string `json:"token"`
	UserStatus     string `json:"userStatus"`
	UserRoleID     string `json:"userRoleOid"`
	RoleID         string `json:"roleOid"`
	RoleName       string `json:"roleName"`
	RoleStatus     string `json:"roleStatus"`
	EmployeeID     string `json:"employeeOid"`
	FullName       string `json:"fullName"`
	Designation    string `json:"designation"`
	MobileNumber   string `json:"mobileNumber"`
	Email          string `json:"email"`
	EmployeeStatus string `json:"employeeStatus"`

	MfiID            *string `json:"mfiOid"`
	MfiName          *string `json:"mfiName"`
	MfiLicenseNumber *string `json:"mfiLicenseNumber"`
	MfiStatus        *string `json:"mfiStatus"`

	BranchID     *string `json:"branchOid"`
	BranchCode   *string `json:"branchCode"`
	BranchName   *string `json:"branchName"`
	BranchStatus *string `json:"branchStatus"`
}

// HasInstitution reports whether the snapshot carries institution fields
func (s *Snapshot) HasInstitution() bool {
	return s.MfiID != nil
}

// HasBranch reports whether the snapshot carries branch fields
func (s *Snapshot) HasBranch() bool {
	return s.BranchID != nil
}

// Encode serializes a snapshot to its cached JSON form
func Encode(s *Snapshot) ([]byte, error) {
	if s == nil || s.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrCorruptSnapshot)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a cached JSON snapshot
func Decode(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty value", ErrCorruptSnapshot)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if s.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrCorruptSnapshot)
	}
	return &s, nil
}
