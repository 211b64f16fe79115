package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/qsecurex/portal/internal/domain/freerequest"
	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/pkg/errors"
)

// FreeRequestRepository implements freerequest.Repository
type FreeRequestRepository struct {
	db *sql.DB
}

// NewFreeRequestRepository creates a new free license request repository
func NewFreeRequestRepository(db *sql.DB) freerequest.Repository {
	return &FreeRequestRepository{db: db}
}

const freeRequestColumns = `id, user_id, requested_plan, status, approved_at, rejected_at, license_id, created_at`

func scanFreeRequest(s scanner) (*freerequest.Request, error) {
	var fr freerequest.Request
	var approvedAt, rejectedAt sql.NullInt64
	var licenseID sql.NullString
	var createdAt int64
	err := s.Scan(&fr.ID, &fr.UserID, &fr.RequestedPlan, &fr.Status,
		&approvedAt, &rejectedAt, &licenseID, &createdAt)
	if err != nil {
		return nil, err
	}
	fr.ApprovedAt = timeOrNil(approvedAt)
	fr.RejectedAt = timeOrNil(rejectedAt)
	fr.LicenseID = stringOrNil(licenseID)
	fr.CreatedAt = time.Unix(createdAt, 0)
	return &fr, nil
}

// Create inserts a pending request
func (r *FreeRequestRepository) Create(ctx context.Context, fr *freerequest.Request) error {
	if fr.ID == "" {
		fr.ID = uuid.NewString()
	}
	fr.Status = freerequest.StatusPending
	fr.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO free_license_requests (id, user_id, requested_plan, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, fr.ID, fr.UserID, fr.RequestedPlan, fr.Status, fr.CreatedAt.Unix())
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return freerequest.ErrPendingExists
		}
		return errors.DatabaseError("Failed to create free license request", err)
	}
	return nil
}

// GetByID retrieves a request by ID
func (r *FreeRequestRepository) GetByID(ctx context.Context, id string) (*freerequest.Request, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+freeRequestColumns+` FROM free_license_requests WHERE id = $1`, id)
	fr, err := scanFreeRequest(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Request")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get free license request", err)
	}
	return fr, nil
}

// ListByUser returns the user's requests, newest first
func (r *FreeRequestRepository) ListByUser(ctx context.Context, userID string) ([]*freerequest.Request, error) {
	return r.query(ctx, `SELECT `+freeRequestColumns+` FROM free_license_requests
		WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
}

// List returns requests newest first, filtered by status when set
func (r *FreeRequestRepository) List(ctx context.Context, status freerequest.Status) ([]*freerequest.Request, error) {
	if status == "" {
		return r.query(ctx, `SELECT `+freeRequestColumns+` FROM free_license_requests
			ORDER BY created_at DESC, id`)
	}
	return r.query(ctx, `SELECT `+freeRequestColumns+` FROM free_license_requests
		WHERE status = $1 ORDER BY created_at DESC, id`, status)
}

func (r *FreeRequestRepository) query(ctx context.Context, q string, args ...any) ([]*freerequest.Request, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list free license requests", err)
	}
	defer rows.Close()

	var out []*freerequest.Request
	for rows.Next() {
		fr, err := scanFreeRequest(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan free license request", err)
		}
		out = append(out, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list free license requests", err)
	}
	return out, nil
}

// Approve inserts the license and marks the request approved
func (r *FreeRequestRepository) Approve(ctx context.Context, id string, l *license.License) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertLicense(ctx, tx, l); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE free_license_requests
			SET status = $1, approved_at = $2, license_id = $3
			WHERE id = $4 AND status = $5
		`, freerequest.StatusApproved, time.Now().Unix(), l.ID, id, freerequest.StatusPending)
		if err != nil {
			return errors.DatabaseError("Failed to approve free license request", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return freerequest.ErrNotPending
		}
		return nil
	})
}

// Reject marks a pending request rejected
func (r *FreeRequestRepository) Reject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE free_license_requests SET status = $1, rejected_at = $2
		WHERE id = $3 AND status = $4
	`, freerequest.StatusRejected, time.Now().Unix(), id, freerequest.StatusPending)
	if err != nil {
		return errors.DatabaseError("Failed to reject free license request", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return freerequest.ErrNotPending
	}
	return nil
}

// CountPending returns the number of requests awaiting review
func (r *FreeRequestRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM free_license_requests WHERE status = $1`, freerequest.StatusPending,
	).Scan(&n)
	if err != nil {
		return 0, errors.DatabaseError("Failed to count free license requests", err)
	}
	return n, nil
}
