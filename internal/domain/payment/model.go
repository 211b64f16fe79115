package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/qsecurex/portal/internal/domain/license"
)

// OrderStatus is the state of a checkout attempt
type OrderStatus string

const (
	OrderCreated OrderStatus = "created"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
	OrderExpired OrderStatus = "expired"
	// OrderCaptured means the provider took the payment but no license was
	// issued because the user already held one for the plan. Needs a refund.
	OrderCaptured OrderStatus = "captured"
)

// MethodRazorpay is recorded as the payment method of gateway purchases
const MethodRazorpay = "razorpay"

// Order is a provider order bound to the user and plan that created it
type Order struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Plan        license.Plan `json:"plan"`
	AmountMinor int64        `json:"amount"`
	Currency    string       `json:"currency"`
	Receipt     string       `json:"receipt"`
	Status      OrderStatus  `json:"status"`
	PaymentID   string       `json:"paymentId,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// GatewayOrderRequest is sent to the payment provider
type GatewayOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// GatewayOrder is the provider's view of a created order
type GatewayOrder struct {
	ID          string
	AmountMinor int64
	Currency    string
	Status      string
}

// Checkout is returned to the browser to open the provider's checkout
type Checkout struct {
	OrderID  string       `json:"orderId"`
	Amount   int64        `json:"amount"`
	Currency string       `json:"currency"`
	Plan     license.Plan `json:"plan"`
	KeyID    string       `json:"keyId"`
}

// Verification carries the client-reported completion data
type Verification struct {
	OrderID   string
	PaymentID string
	Signature string
	Plan      license.Plan // optional; must match the order when set
}

// Result is a completed purchase and the license it produced
type Result struct {
	License    *license.License `json:"license"`
	PurchaseID string           `json:"purchaseId"`
}

// Receipt builds the merchant receipt reference for an order
func Receipt(userID string, now time.Time) string {
	compact := strings.ReplaceAll(userID, "-", "")
	if len(compact) > 8 {
		compact = compact[:8]
	}
	return fmt.Sprintf("rcpt_%s_%d", compact, now.UnixMilli())
}
