package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/domain/payment"
	"github.com/qsecurex/portal/internal/domain/purchase"
	"github.com/qsecurex/portal/internal/pkg/errors"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/metrics"
)

// PaymentConfig holds the payment service settings
type PaymentConfig struct {
	Currency string
	OrderTTL time.Duration
}

// PaymentService implements payment.Service
type PaymentService struct {
	gateway  payment.Gateway
	orders   payment.Repository
	licenses license.Repository
	keyGen   license.KeyGenerator
	cfg      PaymentConfig
	logger   *logger.Logger
	now      func() time.Time
}

// NewPaymentService creates a new payment service. A nil keyGen uses
// license.GenerateKey.
func NewPaymentService(
	gateway payment.Gateway,
	orders payment.Repository,
	licenses license.Repository,
	keyGen license.KeyGenerator,
	cfg PaymentConfig,
	log *logger.Logger,
) payment.Service {
	if keyGen == nil {
		keyGen = license.GenerateKey
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &PaymentService{
		gateway:  gateway,
		orders:   orders,
		licenses: licenses,
		keyGen:   keyGen,
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
	}
}

// CreateOrder creates a provider order for a purchasable plan the user
// does not already own
func (s *PaymentService) CreateOrder(ctx context.Context, userID string, plan license.Plan) (*payment.Checkout, error) {
	if !plan.Purchasable() {
		return nil, errors.BadRequest("Invalid plan selected")
	}
	if !s.gateway.Configured() {
		return nil, errors.NotConfigured("Payment service not configured")
	}

	owned, err := s.licenses.HasActive(ctx, userID, plan)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, errors.Rule(errors.ErrCodeAlreadyOwned,
			fmt.Sprintf("You already have an active %s license", plan), http.StatusBadRequest)
	}

	now := s.now()
	req := payment.GatewayOrderRequest{
		AmountMinor: plan.AmountMinor(),
		Currency:    s.cfg.Currency,
		Receipt:     payment.Receipt(userID, now),
		Notes: map[string]string{
			"userId": userID,
			"plan":   string(plan),
		},
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"plan":    plan,
		}).WithError(err).Error("Payment order creation failed")
		return nil, errors.ProviderAPIError("razorpay", err)
	}

	order := &payment.Order{
		ID:          gwOrder.ID,
		UserID:      userID,
		Plan:        plan,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		Status:      payment.OrderCreated,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	metrics.RecordPaymentOrder(string(plan))
	s.logger.WithFields(map[string]interface{}{
		"user_id":  userID,
		"plan":     plan,
		"order_id": order.ID,
		"amount":   order.AmountMinor,
	}).Info("Payment order created")

	return &payment.Checkout{
		OrderID:  order.ID,
		Amount:   order.AmountMinor,
		Currency: order.Currency,
		Plan:     plan,
		KeyID:    s.gateway.KeyID(),
	}, nil
}

// Verify checks the provider signature against the stored order and, on
// success, issues the license and records the purchase atomically
func (s *PaymentService) Verify(ctx context.Context, userID string, v payment.Verification) (*payment.Result, error) {
	if v.OrderID == "" || v.PaymentID == "" || v.Signature == "" {
		return nil, errors.BadRequest("Missing payment details")
	}
	if !s.gateway.Configured() {
		return nil, errors.NotConfigured("Payment service not configured")
	}

	order, err := s.orders.GetByID(ctx, v.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, errors.NotFound("Order")
	}
	if v.Plan != "" && v.Plan != order.Plan {
		return nil, errors.BadRequest("Plan does not match the order")
	}

	switch order.Status {
	case payment.OrderCreated:
	case payment.OrderPaid:
		return nil, alreadyProcessed()
	case payment.OrderCaptured:
		return nil, capturedUnfulfilled(order.Plan)
	default:
		return nil, errors.BadRequest("Order is no longer payable")
	}

	log := s.logger.WithFields(map[string]interface{}{
		"user_id":    userID,
		"order_id":   order.ID,
		"payment_id": v.PaymentID,
		"plan":       order.Plan,
	})

	if !s.gateway.VerifySignature(v.OrderID, v.PaymentID, v.Signature) {
		if err := s.orders.MarkFailed(ctx, order.ID); err != nil && !errors.Is(err, payment.ErrOrderNotPending) {
			log.WithError(err).Error("Failed to mark order failed")
		}
		metrics.RecordPaymentVerification("invalid_signature")
		log.Warn("Payment signature mismatch")
		return nil, errors.SignatureInvalid("Invalid payment signature")
	}

	now := s.now()
	l := license.New(userID, order.Plan, "", now)
	p := &purchase.Purchase{
		UserID:        userID,
		OrderID:       order.ID,
		Plan:          order.Plan,
		AmountMinor:   order.AmountMinor,
		Currency:      order.Currency,
		Status:        purchase.StatusCompleted,
		TransactionID: v.PaymentID,
		PaymentMethod: payment.MethodRazorpay,
		CreatedAt:     now,
	}

	_, err = license.IssueWithRetry(s.keyGen, license.MaxKeyAttempts, func(key string) error {
		l.LicenseKey = key
		return s.orders.Complete(ctx, order.ID, l, p)
	}, metrics.RecordKeyCollision)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrOrderNotPending), errors.Is(err, payment.ErrPaymentAlreadyRecorded):
			metrics.RecordPaymentVerification("duplicate")
			return nil, alreadyProcessed()
		}
		if errors.Is(err, license.ErrActiveLicenseExists) {
			// Another order for the same plan won. The charge went through,
			// so keep the payment id on record for a refund.
			if mErr := s.orders.MarkCaptured(ctx, order.ID, v.PaymentID); mErr != nil && !errors.Is(mErr, payment.ErrOrderNotPending) {
				log.WithError(mErr).Error("Failed to record captured payment")
			}
			metrics.RecordPaymentVerification("captured_unfulfilled")
			log.Warn("Payment captured for an already licensed plan; refund required")
			return nil, capturedUnfulfilled(order.Plan)
		}
		metrics.RecordPaymentVerification("error")
		log.WithError(err).Error("Payment verified but license issuance failed")
		return nil, issuanceError(err, order.Plan, "You already have an active %s license")
	}

	metrics.RecordPaymentVerification("success")
	metrics.RecordLicenseIssued(string(order.Plan), "purchase")
	log.WithFields(map[string]interface{}{
		"license_id": l.ID,
		"key":        license.MaskKey(l.LicenseKey),
	}).Info("Payment verified and license issued")

	return &payment.Result{License: l, PurchaseID: p.ID}, nil
}

// capturedUnfulfilled is returned when a payment was taken for a plan the
// user already holds
func capturedUnfulfilled(plan license.Plan) error {
	return errors.Conflict(fmt.Sprintf(
		"Payment received but you already have an active %s license. Contact support for a refund", plan))
}

// CapturedOrders lists paid-but-unfulfilled orders awaiting a refund
func (s *PaymentService) CapturedOrders(ctx context.Context) ([]*payment.Order, error) {
	return s.orders.ListByStatus(ctx, payment.OrderCaptured)
}

// PublicKey returns the publishable gateway key
func (s *PaymentService) PublicKey() (string, error) {
	if !s.gateway.Configured() {
		return "", errors.NotConfigured("Payment service not configured")
	}
	return s.gateway.KeyID(), nil
}

// ExpireStaleOrders expires orders left unpaid for longer than the TTL
func (s *PaymentService) ExpireStaleOrders(ctx context.Context) (int64, error) {
	n, err := s.orders.ExpireStale(ctx, s.now().Add(-s.cfg.OrderTTL))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.RecordOrdersExpired(n)
		s.logger.WithFields(map[string]interface{}{"count": n}).Info("Expired stale payment orders")
	}
	return n, nil
}

func alreadyProcessed() error {
	return errors.Rule(errors.ErrCodePaymentAlreadyFinal, "Payment already processed", http.StatusConflict)
}
