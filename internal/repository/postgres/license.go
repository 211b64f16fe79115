package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/pkg/errors"
)

// LicenseRepository implements license.Repository
type LicenseRepository struct {
	db *sql.DB
}

// NewLicenseRepository creates a new license repository
func NewLicenseRepository(db *sql.DB) license.Repository {
	return &LicenseRepository{db: db}
}

const licenseColumns = `l.id, l.user_id, l.plan, l.license_key, l.status, l.device_count,
	l.max_devices, l.purchase_date, l.expiry_date, l.sent_at`

func scanLicense(s scanner, extra ...any) (*license.License, error) {
	var l license.License
	var purchaseDate int64
	var expiry, sent sql.NullInt64
	dest := []any{
		&l.ID, &l.UserID, &l.Plan, &l.LicenseKey, &l.Status, &l.DeviceCount,
		&l.MaxDevices, &purchaseDate, &expiry, &sent,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	l.PurchaseDate = time.Unix(purchaseDate, 0)
	l.ExpiryDate = timeOrNil(expiry)
	l.SentAt = timeOrNil(sent)
	return &l, nil
}

// insertLicense writes l through ex and classifies constraint failures
func insertLicense(ctx context.Context, ex execer, l *license.License) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO licenses (id, user_id, plan, license_key, status, device_count,
			max_devices, purchase_date, expiry_date, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		l.ID, l.UserID, l.Plan, l.LicenseKey, l.Status, l.DeviceCount,
		l.MaxDevices, l.PurchaseDate.Unix(), unixOrNull(l.ExpiryDate), unixOrNull(l.SentAt),
	)
	if err == nil {
		return nil
	}
	if constraint, ok := uniqueViolation(err); ok {
		if containsAny(constraint, "license_key") {
			return license.ErrDuplicateKey
		}
		return license.ErrActiveLicenseExists
	}
	return errors.DatabaseError("Failed to create license", err)
}

// Create inserts a license
func (r *LicenseRepository) Create(ctx context.Context, l *license.License) error {
	return insertLicense(ctx, r.db, l)
}

// GetByID retrieves a license by ID
func (r *LicenseRepository) GetByID(ctx context.Context, id string) (*license.License, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+licenseColumns+` FROM licenses l WHERE l.id = $1`, id)
	l, err := scanLicense(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("License")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get license", err)
	}
	return l, nil
}

// ListByUser returns the user's licenses, newest first
func (r *LicenseRepository) ListByUser(ctx context.Context, userID string) ([]*license.License, error) {
	return r.query(ctx, `SELECT `+licenseColumns+` FROM licenses l
		WHERE l.user_id = $1 ORDER BY l.purchase_date DESC, l.id`, userID)
}

// List returns every license, newest first
func (r *LicenseRepository) List(ctx context.Context) ([]*license.License, error) {
	return r.query(ctx, `SELECT `+licenseColumns+` FROM licenses l ORDER BY l.purchase_date DESC, l.id`)
}

func (r *LicenseRepository) query(ctx context.Context, q string, args ...any) ([]*license.License, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list licenses", err)
	}
	defer rows.Close()

	var out []*license.License
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan license", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list licenses", err)
	}
	return out, nil
}

// ListSent returns manually sent licenses with their owners
func (r *LicenseRepository) ListSent(ctx context.Context) ([]*license.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+licenseColumns+`, COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM licenses l
		LEFT JOIN users u ON u.id = l.user_id
		WHERE l.sent_at IS NOT NULL
		ORDER BY l.sent_at DESC, l.id
	`)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list license history", err)
	}
	defer rows.Close()

	var out []*license.HistoryEntry
	for rows.Next() {
		var name, email string
		l, err := scanLicense(rows, &name, &email)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan license", err)
		}
		out = append(out, &license.HistoryEntry{License: *l, UserName: name, UserEmail: email})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list license history", err)
	}
	return out, nil
}

// HasActive reports whether an active license exists for user and plan
func (r *LicenseRepository) HasActive(ctx context.Context, userID string, plan license.Plan) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM licenses
		WHERE user_id = $1 AND plan = $2 AND status = $3
	`, userID, plan, license.StatusActive).Scan(&n)
	if err != nil {
		return false, errors.DatabaseError("Failed to check active license", err)
	}
	return n > 0, nil
}

// CountActive returns the number of active licenses
func (r *LicenseRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM licenses WHERE status = $1`, license.StatusActive,
	).Scan(&n)
	if err != nil {
		return 0, errors.DatabaseError("Failed to count licenses", err)
	}
	return n, nil
}
