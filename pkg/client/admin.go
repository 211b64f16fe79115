package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// AdminService wraps the back-office endpoints
type AdminService struct {
	client *Client
}

// Stats returns dashboard counters
func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	var stats AdminStats
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/admin/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Users returns one page of users
func (s *AdminService) Users(ctx context.Context, page, pageSize int) (*UserPage, error) {
	var p UserPage
	path := fmt.Sprintf("/api/admin/users?page=%d&page_size=%d", page, pageSize)
	if err := s.client.doRequest(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteUser removes an account and everything it owns
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	return s.client.doRequest(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(id), nil, nil)
}

// SendLicense records an operator-chosen license key for a user
func (s *AdminService) SendLicense(ctx context.Context, userID, plan, key string) (*License, error) {
	body := map[string]string{"userId": userID, "plan": plan, "licenseKey": key}
	var l License
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/admin/send-license", body, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Licenses returns every license
func (s *AdminService) Licenses(ctx context.Context) ([]*License, error) {
	var licenses []*License
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/admin/licenses", nil, &licenses); err != nil {
		return nil, err
	}
	return licenses, nil
}

// LicenseHistory returns manually sent licenses
func (s *AdminService) LicenseHistory(ctx context.Context) ([]*LicenseHistoryEntry, error) {
	var history []*LicenseHistoryEntry
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/admin/license-history", nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// Purchases returns every purchase
func (s *AdminService) Purchases(ctx context.Context) ([]*Purchase, error) {
	var purchases []*Purchase
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/admin/purchases", nil, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// CapturedOrders returns orders that were charged without issuing a license
func (s *AdminService) CapturedOrders(ctx context.Context) ([]*Order, error) {
	var orders []*Order
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/admin/orders/captured", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FreeRequests lists requests, optionally filtered by status
func (s *AdminService) FreeRequests(ctx context.Context, status string) ([]*FreeRequest, error) {
	path := "/api/admin/licenses/free-requests"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var reqs []*FreeRequest
	if err := s.client.doRequest(ctx, http.MethodGet, path, nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// ApproveFreeRequest issues the license for a pending request
func (s *AdminService) ApproveFreeRequest(ctx context.Context, id string) (*License, error) {
	var l License
	path := "/api/admin/licenses/free-requests/" + url.PathEscape(id) + "/approve"
	if err := s.client.doRequest(ctx, http.MethodPost, path, nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// RejectFreeRequest closes a pending request
func (s *AdminService) RejectFreeRequest(ctx context.Context, id string) (*FreeRequest, error) {
	var r FreeRequest
	path := "/api/admin/licenses/free-requests/" + url.PathEscape(id) + "/reject"
	if err := s.client.doRequest(ctx, http.MethodPost, path, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DownloadSettings returns the free download toggle and quota
func (s *AdminService) DownloadSettings(ctx context.Context) (*DownloadSettings, error) {
	var settings DownloadSettings
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/admin/download-settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SetDownloadsEnabled flips the free download toggle
func (s *AdminService) SetDownloadsEnabled(ctx context.Context, enabled bool) (*DownloadSettings, error) {
	var settings DownloadSettings
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/admin/download-settings/toggle", map[string]bool{"enabled": enabled}, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// ResetDownloads clears every free download and returns how many were removed
func (s *AdminService) ResetDownloads(ctx context.Context) (int64, error) {
	var resp struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/admin/download-settings/reset", nil, &resp); err != nil {
		return 0, err
	}
	return resp.DeletedCount, nil
}
