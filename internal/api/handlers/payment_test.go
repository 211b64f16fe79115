package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/domain/payment"
	"github.com/qsecurex/portal/internal/testutil"
)

func TestPaymentHandler_CheckoutFlow(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "buyer@example.com")

	rr := httptest.NewRecorder()
	env.payment.CreateOrder(rr, newRequest(http.MethodPost, "/api/payment/create-order", map[string]string{"plan": "personal"}, u))
	if rr.Code != http.StatusOK {
		t.Fatalf("create-order status = %d (body %s)", rr.Code, rr.Body.String())
	}
	var checkout payment.Checkout
	if err := json.Unmarshal(decode(t, rr).Data, &checkout); err != nil {
		t.Fatal(err)
	}
	if checkout.Amount != 199900 || checkout.Currency != "INR" || checkout.KeyID != env.gateway.ID {
		t.Errorf("checkout = %+v", checkout)
	}

	verify := map[string]string{
		"razorpay_order_id":   checkout.OrderID,
		"razorpay_payment_id": "pay_h1",
		"razorpay_signature":  env.gateway.Sign(checkout.OrderID, "pay_h1"),
		"plan":                "personal",
	}

	tampered := map[string]string{}
	for k, v := range verify {
		tampered[k] = v
	}
	tampered["razorpay_payment_id"] = "pay_h2"

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantCode   string
	}{
		{"missing fields", map[string]string{"plan": "personal"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"enterprise not purchasable", map[string]string{"razorpay_order_id": "o", "razorpay_payment_id": "p", "razorpay_signature": "s", "plan": "enterprise"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"forged payment id", tampered, http.StatusBadRequest, "SIGNATURE_INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			env.payment.Verify(rr, newRequest(http.MethodPost, "/api/payment/verify", tt.body, u))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := decode(t, rr).Error.Code; got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestPaymentHandler_VerifySuccess(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "happy@example.com")

	rr := httptest.NewRecorder()
	env.payment.CreateOrder(rr, newRequest(http.MethodPost, "/api/payment/create-order", map[string]string{"plan": "pro"}, u))
	var checkout payment.Checkout
	if err := json.Unmarshal(decode(t, rr).Data, &checkout); err != nil {
		t.Fatal(err)
	}

	body := map[string]string{
		"razorpay_order_id":   checkout.OrderID,
		"razorpay_payment_id": "pay_ok",
		"razorpay_signature":  env.gateway.Sign(checkout.OrderID, "pay_ok"),
		"plan":                "pro",
	}
	rr = httptest.NewRecorder()
	env.payment.Verify(rr, newRequest(http.MethodPost, "/api/payment/verify", body, u))
	if rr.Code != http.StatusOK {
		t.Fatalf("verify status = %d (body %s)", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	env.payment.CreateOrder(rr, newRequest(http.MethodPost, "/api/payment/create-order", map[string]string{"plan": "pro"}, u))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("second create-order status = %d, want 400", rr.Code)
	}
	if got := decode(t, rr).Error.Code; got != "ALREADY_OWNED" {
		t.Errorf("code = %s", got)
	}
}

func TestPaymentHandler_VerifyFields(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "fields@example.com")

	rr := httptest.NewRecorder()
	env.payment.CreateOrder(rr, newRequest(http.MethodPost, "/api/payment/create-order", map[string]string{"plan": "personal"}, u))
	var checkout payment.Checkout
	if err := json.Unmarshal(decode(t, rr).Data, &checkout); err != nil {
		t.Fatal(err)
	}

	for _, missing := range []string{"razorpay_order_id", "razorpay_payment_id", "razorpay_signature"} {
		t.Run("missing "+missing, func(t *testing.T) {
			body := map[string]string{
				"razorpay_order_id":   checkout.OrderID,
				"razorpay_payment_id": "pay_1",
				"razorpay_signature":  "sig",
			}
			delete(body, missing)

			rr := httptest.NewRecorder()
			env.payment.Verify(rr, newRequest(http.MethodPost, "/api/payment/verify", body, u))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			resp := decode(t, rr)
			if resp.Error.Code != "BAD_REQUEST" || resp.Error.Message != "Missing payment details" {
				t.Errorf("error = %+v", resp.Error)
			}
		})
	}

	rr = httptest.NewRecorder()
	env.payment.Verify(rr, newRequest(http.MethodPost, "/api/payment/verify", map[string]string{
		"razorpay_order_id":   checkout.OrderID,
		"razorpay_payment_id": "pay_noplan",
		"razorpay_signature":  env.gateway.Sign(checkout.OrderID, "pay_noplan"),
	}, u))
	if rr.Code != http.StatusOK {
		t.Fatalf("verify without plan = %d (body %s)", rr.Code, rr.Body.String())
	}
	var result payment.Result
	if err := json.Unmarshal(decode(t, rr).Data, &result); err != nil {
		t.Fatal(err)
	}
	if result.License == nil || result.License.Plan != license.PlanPersonal {
		t.Errorf("license = %+v, want personal", result.License)
	}
}
