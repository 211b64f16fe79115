package payment

import (
	"context"
	"errors"
	"time"

	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/domain/purchase"
)

var (
	// ErrOrderNotPending is returned when an order left the created state
	ErrOrderNotPending = errors.New("order is not awaiting payment")

	// ErrPaymentAlreadyRecorded is returned when the provider payment id
	// was already used for a purchase
	ErrPaymentAlreadyRecorded = errors.New("payment already recorded")
)

// Repository persists orders and settles them
type Repository interface {
	Create(ctx context.Context, o *Order) error

	GetByID(ctx context.Context, id string) (*Order, error)

	// MarkFailed moves a created order to failed
	MarkFailed(ctx context.Context, id string) error

	// MarkCaptured moves a created order to captured and stores the provider
	// payment id so the charge can be refunded
	MarkCaptured(ctx context.Context, id, paymentID string) error

	// Complete moves the order from created to paid, records the payment id
	// and inserts the license and purchase in the same transaction. It reports license constraint
	// violations with the license package errors, ErrOrderNotPending when
	// the order was settled concurrently, and ErrPaymentAlreadyRecorded on
	// a reused payment id.
	Complete(ctx context.Context, orderID string, l *license.License, p *purchase.Purchase) error

	// ExpireStale moves created orders older than before to expired.
	// Captured orders are left alone.
	ExpireStale(ctx context.Context, before time.Time) (int64, error)

	// ListByStatus returns orders in the given state, newest first
	ListByStatus(ctx context.Context, status OrderStatus) ([]*Order, error)
}
