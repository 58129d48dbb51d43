package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's platform role.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// UserType distinguishes standard users from veterinarians.
type UserType string

const (
	UserTypeStandard     UserType = "standard"
	UserTypeVeterinarian UserType = "veterinarian"
)

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusSuspended   UserStatus = "suspended"
	UserStatusDeactivated UserStatus = "deactivated"
)

// User represents a platform user.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Password  string     `json:"-"`
	FullName  string     `json:"full_name"`
	Role      Role       `json:"role"`
	UserType  UserType   `json:"user_type"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      Role       `json:"role"`
	UserType  UserType   `json:"user_type"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		UserType:  u.UserType,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsVeterinarian reports whether the user is a veterinarian.
func (u *User) IsVeterinarian() bool { return u.UserType == UserTypeVeterinarian }
