package dto

// CreateOrderRequest starts a checkout for a paid plan
type CreateOrderRequest struct {
	Plan string `json:"plan" validate:"required,paidplan"`
}

// VerifyPaymentRequest carries the gateway's checkout callback fields.
// Presence of the gateway fields is checked by the payment service; plan is
// optional and only cross-checked against the order when sent.
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	Plan      string `json:"plan" validate:"omitempty,paidplan"`
}

// KeyResponse exposes the public gateway key for the checkout widget
type KeyResponse struct {
	KeyID string `json:"keyId"`
}
