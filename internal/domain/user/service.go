package user

import "context"

// Service defines the interface for account management
type Service interface {
	// Register creates an account with a hashed password
	Register(ctx context.Context, email, password, name string) (*User, error)

	// Authenticate checks credentials and returns the account
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)
}
