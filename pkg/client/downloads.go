package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DownloadService handles installer downloads
type DownloadService struct {
	client *Client
}

// Download tiers accepted by Link
const (
	TierFree     = "free"
	TierPersonal = "personal"
	TierPro      = "pro"
)

var tierPaths = map[string]string{
	TierFree:     "/api/download/macos-dmg",
	TierPersonal: "/api/download/macos-personal",
	TierPro:      "/api/download/macos-pro",
}

// Remaining returns the public free-trial quota
func (s *DownloadService) Remaining(ctx context.Context) (*QuotaStatus, error) {
	var q QuotaStatus
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/download/remaining", nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// CheckEligibility runs the advisory free download check
func (s *DownloadService) CheckEligibility(ctx context.Context) (*Eligibility, error) {
	var e Eligibility
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/download/check-eligibility", nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Link returns a signed installer URL. For the free tier this consumes the
// caller's one free download.
func (s *DownloadService) Link(ctx context.Context, tier, platform string) (string, error) {
	path, ok := tierPaths[tier]
	if !ok {
		return "", fmt.Errorf("unknown tier %q", tier)
	}
	if platform != "" {
		path += "?platform=" + url.QueryEscape(platform)
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := s.client.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
