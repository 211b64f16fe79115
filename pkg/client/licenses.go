package client

import (
	"context"
	"net/http"
)

// LicenseService handles the caller's licenses and free requests
type LicenseService struct {
	client *Client
}

// List returns the caller's licenses
func (s *LicenseService) List(ctx context.Context) ([]*License, error) {
	var licenses []*License
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/licenses", nil, &licenses); err != nil {
		return nil, err
	}
	return licenses, nil
}

// RequestFree asks an operator for a complimentary license
func (s *LicenseService) RequestFree(ctx context.Context, plan string) (*FreeRequest, error) {
	var req FreeRequest
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/licenses/free-request", map[string]string{"plan": plan}, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// FreeRequests returns the caller's requests
func (s *LicenseService) FreeRequests(ctx context.Context) ([]*FreeRequest, error) {
	var reqs []*FreeRequest
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/licenses/free-requests", nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}
