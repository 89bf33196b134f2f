package domain

import "time"

// UserRole separates clients who open tickets from agents who work them.
type UserRole string

const (
	RoleClient UserRole = "client"
	RoleAgent  UserRole = "agent"
)

// Valid reports whether the role is one of the enumerated values.
func (r UserRole) Valid() bool {
	return r == RoleClient || r == RoleAgent
}

// User is the authenticated actor (the identity) behind every operation.
type User struct {
	ID           string
	Name         string
	Email        string
	NationalID   string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAgent reports whether the user holds the agent role.
func (u *User) IsAgent() bool {
	return u != nil && u.Role == RoleAgent
}

// IsClient reports whether the user holds the client role.
func (u *User) IsClient() bool {
	return u != nil && u.Role == RoleClient
}
