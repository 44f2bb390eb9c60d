package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"correo" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest payload for self-registration.
type RegisterRequest struct {
	Name     string `json:"nombre" validate:"required,max=120"`
	Email    string `json:"correo" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// ChangePasswordRequest payload for POST /auth/password/change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,max=72"`
}

// SessionUser is the public part of the authenticated account.
type SessionUser struct {
	ID   int64       `json:"id"`
	Name string      `json:"nombre"`
	Role domain.Role `json:"rol"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      SessionUser `json:"user"`
}
