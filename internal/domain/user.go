package domain

import "time"

// Role enumerates the access tiers of the CRM.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAgent    Role = "agent"
	RoleCustomer Role = "customer"
)

// IsValid reports whether the role is one of the known tiers.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleCustomer:
		return true
	}
	return false
}

// CanBeAssignee reports whether a user with this role may own tickets.
func (r Role) CanBeAssignee() bool {
	return r == RoleAdmin || r == RoleAgent
}

// User is the domain model for every account in the system; the role
// column distinguishes customers from support staff.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
