package payment

import "context"

// Gateway is the payment provider collaborator
type Gateway interface {
	// Configured reports whether credentials are present
	Configured() bool

	// KeyID returns the publishable key used by the browser checkout
	KeyID() string

	// CreateOrder registers an order with the provider
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error)

	// VerifySignature checks the provider signature over orderID|paymentID
	VerifySignature(orderID, paymentID, signature string) bool
}
