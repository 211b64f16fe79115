package device

import "context"

// Service registers devices against active licenses
type Service interface {
	Register(ctx context.Context, userID string, reg Registration) (*Device, error)

	ListByUser(ctx context.Context, userID string) ([]*Device, error)

	List(ctx context.Context) ([]*Device, error)

	// Remove deletes one of the caller's devices
	Remove(ctx context.Context, userID, id string) error
}
