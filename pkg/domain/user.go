package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role constants. Only admins are created by tenant registration today.
const (
	RoleAdmin = "ADMIN"
)

// User is a dashboard account belonging to exactly one tenant.
type User struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns the display name, falling back to the email address.
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
