package domain

import "time"

// Column limits for account fields, in characters.
const (
	MaxUserNameLength = 120
	MaxEmailLength    = 255
)

// Role enumerates the closed set of account roles.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleSoporte Role = "Soporte"
	RoleUsuario Role = "Usuario"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSoporte, RoleUsuario:
		return true
	}
	return false
}

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleSoporte, RoleUsuario}
}

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "Activo"
	UserStatusInactive UserStatus = "Inactivo"
)

// Valid reports whether s is one of the known statuses.
func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}

// User is the persisted account record.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// IsAssignable reports whether the user can currently receive ticket assignments.
func (u *User) IsAssignable() bool {
	return u.IsActive() && u.Role == RoleSoporte
}
