package freerequest

import (
	"context"

	"github.com/qsecurex/portal/internal/domain/license"
)

// Service handles complimentary license requests
type Service interface {
	Create(ctx context.Context, userID string, plan license.Plan) (*Request, error)

	ListByUser(ctx context.Context, userID string) ([]*Request, error)

	List(ctx context.Context, status Status) ([]*Request, error)

	// Approve issues a license for the request
	Approve(ctx context.Context, id string) (*license.License, error)

	Reject(ctx context.Context, id string) (*Request, error)
}
