// internal/domain/auth/dto.go
package auth

import (
	"time"

	"nichifier-service/internal/domain/monetisation"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// RegisterRequest represents user registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	IPAddress string `json:"-"`
}

// LoginResponse is returned after a successful login or registration.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

// PromoteRequest changes a user's role.
type PromoteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  Role   `json:"role" binding:"required"`
}

// Profile is the authenticated user's view of their account.
type Profile struct {
	User       *User                             `json:"user"`
	ActivePlan *monetisation.CreatorSubscription `json:"active_plan,omitempty"`
	PlanUsage  *monetisation.PlanUsage           `json:"plan_usage,omitempty"`
}
