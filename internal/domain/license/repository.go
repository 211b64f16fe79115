package license

import (
	"context"
	"errors"
)

var (
	// ErrDuplicateKey is returned when the license key is already taken
	ErrDuplicateKey = errors.New("license key already exists")

	// ErrActiveLicenseExists is returned when the user already holds an
	// active license for the plan
	ErrActiveLicenseExists = errors.New("active license for plan already exists")
)

// Repository defines the interface for license data access
type Repository interface {
	// Create inserts a license. Constraint violations are reported as
	// ErrDuplicateKey or ErrActiveLicenseExists.
	Create(ctx context.Context, l *License) error

	GetByID(ctx context.Context, id string) (*License, error)

	// ListByUser returns the user's licenses, newest first
	ListByUser(ctx context.Context, userID string) ([]*License, error)

	// List returns every license, newest first
	List(ctx context.Context) ([]*License, error)

	// ListSent returns manually sent licenses joined with their owners,
	// most recently sent first
	ListSent(ctx context.Context) ([]*HistoryEntry, error)

	// HasActive reports whether an active license exists for user and plan
	HasActive(ctx context.Context, userID string, plan Plan) (bool, error)

	// CountActive returns the number of active licenses
	CountActive(ctx context.Context) (int64, error)
}
