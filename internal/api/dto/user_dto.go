package dto

import (
	"time"

	"github.com/helpdeskpro/helpdesk-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	NationalID string `json:"national_id"`
	Role       string `json:"role"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	NationalID string          `json:"national_id"`
	Role       domain.UserRole `json:"role"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuthResponse bundles a logged-in user with its bearer token.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// AgentResponse is the reduced directory entry exposed to agents.
type AgentResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		NationalID: user.NationalID,
		Role:       user.Role,
		CreatedAt:  user.CreatedAt,
	}
}
