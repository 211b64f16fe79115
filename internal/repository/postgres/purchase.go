package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/qsecurex/portal/internal/domain/payment"
	"github.com/qsecurex/portal/internal/domain/purchase"
	"github.com/qsecurex/portal/internal/pkg/errors"
)

// PurchaseRepository implements purchase.Repository
type PurchaseRepository struct {
	db *sql.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *sql.DB) purchase.Repository {
	return &PurchaseRepository{db: db}
}

const purchaseColumns = `id, user_id, license_id, order_id, plan, amount, currency, status,
	transaction_id, payment_method, created_at`

func scanPurchase(s scanner) (*purchase.Purchase, error) {
	var p purchase.Purchase
	var licenseID sql.NullString
	var createdAt int64
	err := s.Scan(&p.ID, &p.UserID, &licenseID, &p.OrderID, &p.Plan, &p.AmountMinor,
		&p.Currency, &p.Status, &p.TransactionID, &p.PaymentMethod, &createdAt)
	if err != nil {
		return nil, err
	}
	p.LicenseID = stringOrNil(licenseID)
	p.CreatedAt = time.Unix(createdAt, 0)
	return &p, nil
}

func insertPurchase(ctx context.Context, ex execer, p *purchase.Purchase) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO purchases (id, user_id, license_id, order_id, plan, amount, currency,
			status, transaction_id, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		p.ID, p.UserID, stringOrNull(p.LicenseID), p.OrderID, p.Plan, p.AmountMinor, p.Currency,
		p.Status, p.TransactionID, p.PaymentMethod, p.CreatedAt.Unix(),
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return payment.ErrPaymentAlreadyRecorded
		}
		return errors.DatabaseError("Failed to create purchase", err)
	}
	return nil
}

// ListByUser returns the user's purchases, newest first
func (r *PurchaseRepository) ListByUser(ctx context.Context, userID string) ([]*purchase.Purchase, error) {
	return r.query(ctx, `SELECT `+purchaseColumns+` FROM purchases
		WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
}

// List returns every purchase, newest first
func (r *PurchaseRepository) List(ctx context.Context) ([]*purchase.Purchase, error) {
	return r.query(ctx, `SELECT `+purchaseColumns+` FROM purchases ORDER BY created_at DESC, id`)
}

func (r *PurchaseRepository) query(ctx context.Context, q string, args ...any) ([]*purchase.Purchase, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list purchases", err)
	}
	defer rows.Close()

	var out []*purchase.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan purchase", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list purchases", err)
	}
	return out, nil
}

// TotalRevenue sums completed purchases in minor units
func (r *PurchaseRepository) TotalRevenue(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM purchases WHERE status = $1`,
		purchase.StatusCompleted,
	).Scan(&total)
	if err != nil {
		return 0, errors.DatabaseError("Failed to sum revenue", err)
	}
	return total, nil
}
