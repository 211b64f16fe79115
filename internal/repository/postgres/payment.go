package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/domain/payment"
	"github.com/qsecurex/portal/internal/domain/purchase"
	"github.com/qsecurex/portal/internal/pkg/errors"
)

// PaymentRepository implements payment.Repository
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new payment order repository
func NewPaymentRepository(db *sql.DB) payment.Repository {
	return &PaymentRepository{db: db}
}

// Create persists an order in the created state
func (r *PaymentRepository) Create(ctx context.Context, o *payment.Order) error {
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = payment.OrderCreated
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_orders (id, user_id, plan, amount, currency, receipt, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, o.ID, o.UserID, o.Plan, o.AmountMinor, o.Currency, o.Receipt, o.Status, now.Unix(), now.Unix())
	if err != nil {
		return errors.DatabaseError("Failed to create payment order", err)
	}
	return nil
}

const orderColumns = `id, user_id, plan, amount, currency, receipt, status, payment_id, created_at, updated_at`

func scanOrder(row scanner) (*payment.Order, error) {
	var o payment.Order
	var paymentID sql.NullString
	var createdAt, updatedAt int64
	if err := row.Scan(&o.ID, &o.UserID, &o.Plan, &o.AmountMinor, &o.Currency, &o.Receipt,
		&o.Status, &paymentID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	o.PaymentID = paymentID.String
	o.CreatedAt = time.Unix(createdAt, 0)
	o.UpdatedAt = time.Unix(updatedAt, 0)
	return &o, nil
}

// GetByID retrieves an order by provider order ID
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM payment_orders WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Order")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get payment order", err)
	}
	return o, nil
}

// ListByStatus returns orders in one state, newest first
func (r *PaymentRepository) ListByStatus(ctx context.Context, status payment.OrderStatus) ([]*payment.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM payment_orders
		WHERE status = $1 ORDER BY updated_at DESC
	`, status)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list payment orders", err)
	}
	defer rows.Close()

	orders := make([]*payment.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan payment order", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list payment orders", err)
	}
	return orders, nil
}

// MarkFailed moves a created order to failed
func (r *PaymentRepository) MarkFailed(ctx context.Context, id string) error {
	return transition(ctx, r.db, id, payment.OrderCreated, payment.OrderFailed, "")
}

// MarkCaptured parks a created order whose payment could not be fulfilled
func (r *PaymentRepository) MarkCaptured(ctx context.Context, id, paymentID string) error {
	return transition(ctx, r.db, id, payment.OrderCreated, payment.OrderCaptured, paymentID)
}

// Complete settles the order and writes the license and purchase together
func (r *PaymentRepository) Complete(ctx context.Context, orderID string, l *license.License, p *purchase.Purchase) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := transition(ctx, tx, orderID, payment.OrderCreated, payment.OrderPaid, p.TransactionID); err != nil {
			return err
		}
		if err := insertLicense(ctx, tx, l); err != nil {
			return err
		}
		p.LicenseID = &l.ID
		return insertPurchase(ctx, tx, p)
	})
}

// ExpireStale expires created orders older than before
func (r *PaymentRepository) ExpireStale(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_orders SET status = $1, updated_at = $2
		WHERE status = $3 AND created_at < $4
	`, payment.OrderExpired, time.Now().Unix(), payment.OrderCreated, before.Unix())
	if err != nil {
		return 0, errors.DatabaseError("Failed to expire payment orders", err)
	}
	return rowsAffected(res)
}

// transition moves an order between states; a non-empty paymentID is stored
// alongside
func transition(ctx context.Context, ex execer, id string, from, to payment.OrderStatus, paymentID string) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE payment_orders SET status = $1, payment_id = COALESCE(NULLIF($2, ''), payment_id), updated_at = $3
		WHERE id = $4 AND status = $5
	`, to, paymentID, time.Now().Unix(), id, from)
	if err != nil {
		return errors.DatabaseError("Failed to update payment order", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return payment.ErrOrderNotPending
	}
	return nil
}
