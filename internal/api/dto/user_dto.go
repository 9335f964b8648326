package dto

import (
	"time"

	"github.com/spec-kit/support-crm/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse public account shape.
type UserResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// ChangeRoleRequest payload for admin role reassignment.
type ChangeRoleRequest struct {
	Role domain.Role `json:"role"`
}

// CreateTagRequest payload.
type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}
