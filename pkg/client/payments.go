package client

import (
	"context"
	"net/http"
)

// PaymentService handles checkout
type PaymentService struct {
	client *Client
}

// CreateOrder opens a gateway order for plan (personal or pro)
func (s *PaymentService) CreateOrder(ctx context.Context, plan string) (*Checkout, error) {
	var checkout Checkout
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/payment/create-order", map[string]string{"plan": plan}, &checkout); err != nil {
		return nil, err
	}
	return &checkout, nil
}

// Verify submits the gateway callback and returns the issued license
func (s *PaymentService) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	var result VerifyResult
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/payment/verify", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PublicKey returns the gateway key for the checkout widget
func (s *PaymentService) PublicKey(ctx context.Context) (string, error) {
	var resp struct {
		KeyID string `json:"keyId"`
	}
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/payment/key", nil, &resp); err != nil {
		return "", err
	}
	return resp.KeyID, nil
}
