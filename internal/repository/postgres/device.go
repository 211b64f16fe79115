package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/qsecurex/portal/internal/domain/device"
	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/pkg/errors"
)

// DeviceRepository implements device.Repository
type DeviceRepository struct {
	db *sql.DB
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *sql.DB) device.Repository {
	return &DeviceRepository{db: db}
}

const deviceColumns = `id, user_id, license_id, device_id, device_name, device_type, registered_at`

func scanDevice(s scanner) (*device.Device, error) {
	var d device.Device
	var name sql.NullString
	var registeredAt int64
	err := s.Scan(&d.ID, &d.UserID, &d.LicenseID, &d.DeviceID, &name, &d.DeviceType, &registeredAt)
	if err != nil {
		return nil, err
	}
	d.DeviceName = stringOrNil(name)
	d.RegisteredAt = time.Unix(registeredAt, 0)
	return &d, nil
}

// Register claims a device slot on the license and inserts the device
func (r *DeviceRepository) Register(ctx context.Context, d *device.Device) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.RegisteredAt = time.Now()

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE licenses SET device_count = device_count + 1
			WHERE id = $1 AND user_id = $2 AND status = $3 AND device_count < max_devices
		`, d.LicenseID, d.UserID, license.StatusActive)
		if err != nil {
			return errors.DatabaseError("Failed to claim device slot", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return device.ErrLicenseFull
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO devices (id, user_id, license_id, device_id, device_name, device_type, registered_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, d.ID, d.UserID, d.LicenseID, d.DeviceID, stringOrNull(d.DeviceName), d.DeviceType, d.RegisteredAt.Unix())
		if err != nil {
			if _, ok := uniqueViolation(err); ok {
				return device.ErrDuplicateDevice
			}
			return errors.DatabaseError("Failed to register device", err)
		}
		return nil
	})
}

// ListByUser returns the user's devices, newest first
func (r *DeviceRepository) ListByUser(ctx context.Context, userID string) ([]*device.Device, error) {
	return r.query(ctx, `SELECT `+deviceColumns+` FROM devices
		WHERE user_id = $1 ORDER BY registered_at DESC, id`, userID)
}

// List returns every device, newest first
func (r *DeviceRepository) List(ctx context.Context) ([]*device.Device, error) {
	return r.query(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY registered_at DESC, id`)
}

func (r *DeviceRepository) query(ctx context.Context, q string, args ...any) ([]*device.Device, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list devices", err)
	}
	defer rows.Close()

	var out []*device.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan device", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list devices", err)
	}
	return out, nil
}

// GetByID retrieves a device by ID
func (r *DeviceRepository) GetByID(ctx context.Context, id string) (*device.Device, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id)
	d, err := scanDevice(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Device")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get device", err)
	}
	return d, nil
}

// Remove deletes the device and releases its license slot
func (r *DeviceRepository) Remove(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var licenseID string
		err := tx.QueryRowContext(ctx, `SELECT license_id FROM devices WHERE id = $1`, id).Scan(&licenseID)
		if err == sql.ErrNoRows {
			return errors.NotFound("Device")
		}
		if err != nil {
			return errors.DatabaseError("Failed to get device", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM devices WHERE id = $1`, id); err != nil {
			return errors.DatabaseError("Failed to remove device", err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE licenses SET device_count = device_count - 1
			WHERE id = $1 AND device_count > 0
		`, licenseID)
		if err != nil {
			return errors.DatabaseError("Failed to release device slot", err)
		}
		return nil
	})
}
