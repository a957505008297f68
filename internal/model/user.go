package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorisation level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a storefront account.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the caller has the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess reports whether the caller may act on a resource owned by ownerID.
func (p Principal) CanAccess(ownerID uuid.UUID) bool {
	return p.IsAdmin() || p.UserID == ownerID
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the payload for exchanging credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdateRequest changes the caller's own account. Absent fields are kept.
type ProfileUpdateRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitnil,min=1"`
	Email *string `json:"email,omitempty" validate:"omitnil,email"`
}

// AuthResponse carries an issued token and the account it belongs to.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
