package dto

import (
	"time"

	"github.com/spec-kit/staff-console/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// AuthResponse is returned on sign-in. The token is also set as a cookie.
type AuthResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      domain.UserProfile `json:"user"`
}

// SessionResponse describes the signed-in operator.
type SessionResponse struct {
	Authenticated bool               `json:"authenticated"`
	User          domain.UserProfile `json:"user"`
}
