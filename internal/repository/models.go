package repository

import "time"

// StatusActive is the only status that lets an entity take part in a login
const StatusActive = "Active"

// Login trail types
const (
	TrailSignIn  = "sign_in"
	TrailSignOut = "sign_out"
)

// User is a back-office login account
type User struct {
	ID                    string
	Username              string
	PasswordHash          string
	Status                string
	PasswordResetRequired string
	CreatedAt             time.Time
	UpdatedAt             *time.Time
}

// UserRole links a user to a role
type UserRole struct {
	ID        string
	UserID    string
	RoleID    string
	CreatedAt time.Time
}

// Role is a named authorization role
type Role struct {
	ID     string
	Name   string
	Status string
}

// Employee is the staff profile attached to a user. MfiID and BranchID are
// nil for head-office staff.
type Employee struct {
	ID           string
	UserID       string
	FullName     string
	Designation  string
	MobileNumber string
	Email        string
	Status       string
	MfiID        *string
	BranchID     *string
}

// Mfi is a microfinance institution
type Mfi struct {
	ID            string
	Name          string
	LicenseNumber string
	Status        string
}

// Branch is a branch office of an institution
type Branch struct {
	ID     string
	Code   string
	Name   string
	Status string
}

// LoginTrail is an append-only sign in/out audit record
type LoginTrail struct {
	ID        string
	UserID    string
	Type      string
	SourceIP  string
	InOutTime time.Time
}
