package models

import (
	"time"

	"github.com/yigit/campusprint/internal/domain"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64       `json:"id" db:"id" example:"1"`                                // Unique identifier for the user
	Username    string      `json:"username" db:"username" example:"jdoe"`                 // Unique login handle
	Email       string      `json:"email" db:"email" example:"jdoe@campus.edu"`            // Unique email address
	Password    string      `json:"-" db:"password_hash"`                                  // bcrypt hash, never serialized
	Role        domain.Role `json:"role" db:"role" example:"student"`                      // student or admin
	CreatedAt   time.Time   `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at" example:"2024-01-02T15:30:00Z"`
	LastLoginAt *time.Time  `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// IsAdmin reports whether the user holds the administrator role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role.IsAdmin()
}
