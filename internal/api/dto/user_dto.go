package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateUserRequest payload for administrator-created accounts.
type CreateUserRequest struct {
	Name     string            `json:"nombre" validate:"required,max=120"`
	Email    string            `json:"correo" validate:"required,email,max=255"`
	Password string            `json:"password" validate:"required,max=72"`
	Role     domain.Role       `json:"rol"`
	Status   domain.UserStatus `json:"estado"`
}

// UpdateUserRequest is a partial update; omitted fields are unchanged.
type UpdateUserRequest struct {
	Name     *string            `json:"nombre" validate:"omitempty,min=1,max=120"`
	Email    *string            `json:"correo" validate:"omitempty,email,max=255"`
	Password *string            `json:"password" validate:"omitempty,min=1,max=72"`
	Role     *domain.Role       `json:"rol"`
	Status   *domain.UserStatus `json:"estado"`
}

// UserResponse is the public account representation. It never carries the
// password hash.
type UserResponse struct {
	ID        int64             `json:"id"`
	Name      string            `json:"nombre"`
	Email     string            `json:"correo"`
	Role      domain.Role       `json:"rol"`
	Status    domain.UserStatus `json:"estado"`
	CreatedAt time.Time         `json:"fecha_creacion"`
}

// SupportAgentResponse is the slim agent entry used for assignment pickers.
type SupportAgentResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"correo"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

// NewUserListResponse maps a user slice; never nil.
func NewUserListResponse(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// NewSupportAgentListResponse maps active agents; never nil.
func NewSupportAgentListResponse(users []domain.User) []SupportAgentResponse {
	out := make([]SupportAgentResponse, 0, len(users))
	for _, u := range users {
		out = append(out, SupportAgentResponse{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out
}
