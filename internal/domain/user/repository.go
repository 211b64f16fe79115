package user

import (
	"context"
	"errors"
)

// ErrEmailTaken is returned when the email is already registered
var ErrEmailTaken = errors.New("email already registered")

// Repository defines the interface for user data access
type Repository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List retrieves users with pagination, newest first
	List(ctx context.Context, limit, offset int) ([]*User, int64, error)

	// Delete removes the user and every record it owns in one transaction
	Delete(ctx context.Context, id string) error

	// Count returns the number of registered users
	Count(ctx context.Context) (int64, error)
}
