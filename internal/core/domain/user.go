package domain

import (
	"errors"
	"time"
)

const (
	RoleClient = "client"
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserID identifies a user. Ownership checks compare UserID values directly;
// handlers convert claim/path strings exactly once at the boundary.
type UserID string

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r string) bool {
	return r == RoleClient || r == RoleOwner || r == RoleAdmin
}

// User models a registered actor: a client booking residences, an owner
// publishing them, or an admin.
type User struct {
	ID           UserID    `json:"id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Identity is the credential-free view attached to authenticated requests.
type Identity struct {
	ID    UserID `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Identity strips the password hash from a User.
func (u *User) Identity() Identity {
	return Identity{
		ID:    u.ID,
		Role:  u.Role,
		Email: u.Email,
		Name:  u.Name,
		Phone: u.Phone,
	}
}
