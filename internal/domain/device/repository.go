package device

import (
	"context"
	"errors"
)

var (
	// ErrLicenseFull is returned when the license has no free device slot
	ErrLicenseFull = errors.New("license device limit reached")

	// ErrDuplicateDevice is returned when the user already registered the device id
	ErrDuplicateDevice = errors.New("device already registered")
)

// Repository persists devices and their license slot accounting
type Repository interface {
	// Register claims a slot on d.LicenseID and inserts the device in one
	// transaction
	Register(ctx context.Context, d *Device) error

	ListByUser(ctx context.Context, userID string) ([]*Device, error)

	List(ctx context.Context) ([]*Device, error)

	GetByID(ctx context.Context, id string) (*Device, error)

	// Remove deletes the device and releases its license slot
	Remove(ctx context.Context, id string) error
}
