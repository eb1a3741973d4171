package domain

import "time"

// UserRole distinguishes administrative users from agents.
type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleAgent UserRole = "AGENT"
)

// User is an internal account (admin or agent) acting on cases.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         UserRole
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns the display name used in history views.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
