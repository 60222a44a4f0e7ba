package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the access level of an inventory system account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// ParseRole maps a free-form role name to a Role. Unknown or empty names become RoleStaff.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleStaff
	}
}

// UserDB represents a user record in the database
type UserDB struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`       // Primary key
	Username     string    `json:"username" db:"username"`     // Unique username
	Email        string    `json:"email" db:"email"`           // Unique email
	PasswordHash string    `json:"-" db:"password_hash"`       // bcrypt hash
	Role         Role      `json:"role" db:"role"`             // Access level
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // Creation timestamp
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // Last update timestamp
}

// User is the public descriptor of an account returned to clients.
// swagger:model User
type User struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
}

// ToUser strips the record down to its public descriptor.
func (u *UserDB) ToUser() *User {
	if u == nil {
		return nil
	}
	return &User{
		UserID:   u.UserID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
