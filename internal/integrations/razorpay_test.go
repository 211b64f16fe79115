package integrations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/qsecurex/portal/internal/config"
	"github.com/qsecurex/portal/internal/domain/payment"
)

func TestRazorpayClient_CreateOrder(t *testing.T) {
	var got razorpayOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "secret" {
			t.Errorf("basic auth = %q/%q, %v", user, pass, ok)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"order_ABC123","entity":"order","amount":499900,"currency":"INR","receipt":"rcpt_x","status":"created"}`))
	}))
	defer server.Close()

	client := NewRazorpayClient(config.PaymentConfig{KeyID: "rzp_test_key", KeySecret: "secret", APIURL: server.URL + "/"})

	order, err := client.CreateOrder(context.Background(), payment.GatewayOrderRequest{
		AmountMinor: 499900,
		Currency:    "INR",
		Receipt:     "rcpt_x",
		Notes:       map[string]string{"userId": "u1", "plan": "pro"},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if order.ID != "order_ABC123" || order.AmountMinor != 499900 {
		t.Errorf("unexpected order: %+v", order)
	}
	if got.Amount != 499900 || got.Notes["plan"] != "pro" {
		t.Errorf("unexpected request body: %+v", got)
	}
}

func TestRazorpayClient_CreateOrderErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer server.Close()

	tests := []struct {
		name    string
		cfg     config.PaymentConfig
		wantMsg string
	}{
		{
			name:    "not configured",
			cfg:     config.PaymentConfig{APIURL: server.URL},
			wantMsg: "not configured",
		},
		{
			name:    "provider error",
			cfg:     config.PaymentConfig{KeyID: "k", KeySecret: "s", APIURL: server.URL},
			wantMsg: "amount must be at least 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRazorpayClient(tt.cfg).CreateOrder(context.Background(), payment.GatewayOrderRequest{AmountMinor: 1})
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("CreateOrder() error = %v, want containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestRazorpayClient_VerifySignature(t *testing.T) {
	client := NewRazorpayClient(config.PaymentConfig{KeyID: "k", KeySecret: "secret"})
	sig := payment.Sign("secret", "order_1", "pay_1")

	if !client.VerifySignature("order_1", "pay_1", sig) {
		t.Error("VerifySignature() rejected a valid signature")
	}
	if client.VerifySignature("order_1", "pay_2", sig) {
		t.Error("VerifySignature() accepted a signature for another payment")
	}
}
