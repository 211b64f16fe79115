package services

import (
	"context"
	"net/http"
	"sort"

	"github.com/qsecurex/portal/internal/domain/device"
	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/pkg/errors"
	"github.com/qsecurex/portal/internal/pkg/logger"
)

// DeviceService implements device.Service
type DeviceService struct {
	repo     device.Repository
	licenses license.Repository
	logger   *logger.Logger
}

// NewDeviceService creates a new device service
func NewDeviceService(repo device.Repository, licenses license.Repository, log *logger.Logger) device.Service {
	return &DeviceService{repo: repo, licenses: licenses, logger: log}
}

// Register binds a device to one of the user's active licenses. Candidates
// are tried most free capacity first; the repository's guarded increment
// decides the race.
func (s *DeviceService) Register(ctx context.Context, userID string, reg device.Registration) (*device.Device, error) {
	if reg.DeviceID == "" {
		return nil, errors.BadRequest("Device ID is required")
	}
	if !reg.DeviceType.Valid() {
		return nil, errors.BadRequest("Invalid device type")
	}

	owned, err := s.licenses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var candidates []*license.License
	for _, l := range owned {
		if !l.IsActive() {
			continue
		}
		if reg.LicenseID != "" && l.ID != reg.LicenseID {
			continue
		}
		candidates = append(candidates, l)
	}
	if len(candidates) == 0 {
		if reg.LicenseID != "" {
			return nil, errors.NotFound("License")
		}
		return nil, errors.Forbidden("An active license is required to register a device")
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RemainingDevices() > candidates[j].RemainingDevices()
	})

	for _, l := range candidates {
		d := &device.Device{
			UserID:     userID,
			LicenseID:  l.ID,
			DeviceID:   reg.DeviceID,
			DeviceName: reg.DeviceName,
			DeviceType: reg.DeviceType,
		}
		err := s.repo.Register(ctx, d)
		switch {
		case err == nil:
			s.logger.WithFields(map[string]interface{}{
				"user_id":    userID,
				"license_id": l.ID,
				"device_id":  d.DeviceID,
			}).Info("Device registered")
			return d, nil
		case errors.Is(err, device.ErrLicenseFull):
			continue
		case errors.Is(err, device.ErrDuplicateDevice):
			return nil, errors.Conflict("Device already registered")
		default:
			return nil, err
		}
	}

	return nil, errors.Rule(errors.ErrCodeDeviceLimitReached,
		"Device limit reached for your license", http.StatusForbidden)
}

// ListByUser returns the user's devices
func (s *DeviceService) ListByUser(ctx context.Context, userID string) ([]*device.Device, error) {
	return s.repo.ListByUser(ctx, userID)
}

// List returns every device
func (s *DeviceService) List(ctx context.Context) ([]*device.Device, error) {
	return s.repo.List(ctx)
}

// Remove deletes one of the caller's devices and frees its slot
func (s *DeviceService) Remove(ctx context.Context, userID, id string) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d.UserID != userID {
		return errors.NotFound("Device")
	}
	if err := s.repo.Remove(ctx, id); err != nil {
		return err
	}
	s.logger.WithFields(map[string]interface{}{
		"user_id":    userID,
		"license_id": d.LicenseID,
		"device_id":  d.DeviceID,
	}).Info("Device removed")
	return nil
}
