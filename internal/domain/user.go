package domain

import (
	"fmt"
	"time"
)

// User represents an account that can upload and search documents
type User struct {
	ID        string
	Username  string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// Identity is the resolved uploader/requester identity attached to a request
type Identity struct {
	Username string
	Role     Role
}

// NewUser creates a new User instance
func NewUser(id, username, email string, role Role, createdAt time.Time) *User {
	return &User{
		ID:        id,
		Username:  username,
		Email:     email,
		Role:      role,
		CreatedAt: createdAt,
	}
}

// ValidateUser validates a User instance
func ValidateUser(u *User) error {
	if u == nil {
		return fmt.Errorf("user cannot be nil")
	}

	if u.ID == "" {
		return fmt.Errorf("user ID is required")
	}

	if u.Username == "" {
		return fmt.Errorf("user Username is required")
	}

	if !IsValidRole(u.Role) {
		return fmt.Errorf("user Role is invalid: %s", u.Role)
	}

	return nil
}
