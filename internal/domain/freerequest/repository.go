package freerequest

import (
	"context"
	"errors"

	"github.com/qsecurex/portal/internal/domain/license"
)

var (
	// ErrPendingExists is returned when the user already has a pending
	// request for the plan
	ErrPendingExists = errors.New("pending request for plan already exists")

	// ErrNotPending is returned when the request was already reviewed
	ErrNotPending = errors.New("request has already been processed")
)

// Repository persists free license requests
type Repository interface {
	Create(ctx context.Context, r *Request) error

	GetByID(ctx context.Context, id string) (*Request, error)

	ListByUser(ctx context.Context, userID string) ([]*Request, error)

	// List returns requests newest first, optionally filtered by status
	List(ctx context.Context, status Status) ([]*Request, error)

	// Approve moves a pending request to approved and inserts the license
	// in one transaction
	Approve(ctx context.Context, id string, l *license.License) error

	// Reject moves a pending request to rejected
	Reject(ctx context.Context, id string) error

	CountPending(ctx context.Context) (int64, error)
}
