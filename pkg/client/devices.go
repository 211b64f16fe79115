package client

import (
	"context"
	"net/http"
	"net/url"
)

// DeviceService handles device registration
type DeviceService struct {
	client *Client
}

// Register binds a device to one of the caller's licenses
func (s *DeviceService) Register(ctx context.Context, req RegisterDeviceRequest) (*Device, error) {
	var d Device
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/devices", req, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns the caller's devices
func (s *DeviceService) List(ctx context.Context) ([]*Device, error) {
	var devices []*Device
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/devices", nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// Remove frees a device slot
func (s *DeviceService) Remove(ctx context.Context, id string) error {
	return s.client.doRequest(ctx, http.MethodDelete, "/api/devices/"+url.PathEscape(id), nil, nil)
}
