package handlers

import (
	"net/http"

	"github.com/qsecurex/portal/internal/api/dto"
	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/domain/payment"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/utils"
	"github.com/qsecurex/portal/internal/pkg/validator"
)

// PaymentHandler handles checkout requests
type PaymentHandler struct {
	service   payment.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service payment.Service, log *logger.Logger, val *validator.Validator) *PaymentHandler {
	return &PaymentHandler{service: service, logger: log, validator: val}
}

// CreateOrder opens a gateway order for a paid plan
// @Summary Create payment order
// @Tags Payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOrderRequest true "Plan to buy"
// @Success 200 {object} payment.Checkout
// @Failure 400 {object} utils.ErrorResponse "Invalid plan or plan already owned"
// @Failure 500 {object} utils.ErrorResponse "Payment service not configured"
// @Router /payment/create-order [post]
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req dto.CreateOrderRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	checkout, err := h.service.CreateOrder(r.Context(), userID, license.Plan(req.Plan))
	if err != nil {
		writeErr(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, checkout)
}

// Verify checks the checkout signature and issues the license
// @Summary Verify payment
// @Tags Payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.VerifyPaymentRequest true "Gateway callback fields"
// @Success 200 {object} payment.Result
// @Failure 400 {object} utils.ErrorResponse "Invalid signature"
// @Failure 409 {object} utils.ErrorResponse "Payment already processed"
// @Router /payment/verify [post]
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req dto.VerifyPaymentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.service.Verify(r.Context(), userID, payment.Verification{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Plan:      license.Plan(req.Plan),
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Payment verified and license issued", result)
}

// Key returns the public gateway key
// @Summary Payment public key
// @Tags Payment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.KeyResponse
// @Router /payment/key [get]
func (h *PaymentHandler) Key(w http.ResponseWriter, r *http.Request) {
	keyID, err := h.service.PublicKey()
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.KeyResponse{KeyID: keyID})
}

// CapturedOrders lists charged orders that produced no license
// @Summary Orders awaiting refund
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} payment.Order
// @Router /admin/orders/captured [get]
func (h *PaymentHandler) CapturedOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.CapturedOrders(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, orders)
}
