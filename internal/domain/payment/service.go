package payment

import (
	"context"

	"github.com/qsecurex/portal/internal/domain/license"
)

// Service runs the checkout and verification flow
type Service interface {
	// CreateOrder starts a purchase of plan for userID
	CreateOrder(ctx context.Context, userID string, plan license.Plan) (*Checkout, error)

	// Verify checks the provider signature and issues the license
	Verify(ctx context.Context, userID string, v Verification) (*Result, error)

	// PublicKey returns the publishable gateway key
	PublicKey() (string, error)

	// CapturedOrders lists orders that were charged but not fulfilled
	CapturedOrders(ctx context.Context) ([]*Order, error)

	// ExpireStaleOrders expires unpaid orders older than the configured TTL
	ExpireStaleOrders(ctx context.Context) (int64, error)
}
