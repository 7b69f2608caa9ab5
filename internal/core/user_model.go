package core

import (
	"context"
	"time"
)

// User represents an authenticated application user.
type User struct {
	ID           int
	Username     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// UserService provides user registration and credential verification.
type UserService interface {
	// GetByUsername finds an active user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByID returns a user by primary key.
	GetByID(ctx context.Context, userID int) (*User, error)

	// CreateUser registers a user. Username must be at least 3 characters
	// with no spaces; the password must be at least 8 characters containing
	// a letter and a digit, and is stored bcrypt-hashed.
	CreateUser(ctx context.Context, username, password string) (*User, error)

	// Authenticate verifies credentials and stamps last_login on success.
	Authenticate(ctx context.Context, username, password string) (*User, error)
}
