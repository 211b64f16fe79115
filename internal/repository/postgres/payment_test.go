package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/domain/payment"
	"github.com/qsecurex/portal/internal/domain/purchase"
	"github.com/qsecurex/portal/internal/repository/postgres"
	"github.com/qsecurex/portal/internal/testutil"
)

func newOrder(t *testing.T, repo payment.Repository, id, userID string, plan license.Plan) *payment.Order {
	t.Helper()
	o := &payment.Order{
		ID: id, UserID: userID, Plan: plan, AmountMinor: plan.AmountMinor(),
		Currency: "INR", Receipt: "rcpt_test",
	}
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func completedPurchase(o *payment.Order, paymentID string) *purchase.Purchase {
	return &purchase.Purchase{
		UserID: o.UserID, OrderID: o.ID, Plan: o.Plan, AmountMinor: o.AmountMinor,
		Currency: o.Currency, Status: purchase.StatusCompleted,
		TransactionID: paymentID, PaymentMethod: payment.MethodRazorpay,
	}
}

func TestPaymentRepository_Complete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewPaymentRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "buyer@example.com")
	o := newOrder(t, repo, "order_1", u.ID, license.PlanPro)

	l := license.New(u.ID, o.Plan, "PRO1-PRO1-PRO1-PRO1", time.Now())
	p := completedPurchase(o, "pay_1")
	require.NoError(t, repo.Complete(ctx, o.ID, l, p))
	require.NotNil(t, p.LicenseID)
	assert.Equal(t, l.ID, *p.LicenseID)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.OrderPaid, got.Status)
	assert.Equal(t, "pay_1", got.PaymentID)

	// Settled orders cannot be completed again
	again := license.New(u.ID, o.Plan, "PRO2-PRO2-PRO2-PRO2", time.Now())
	err = repo.Complete(ctx, o.ID, again, completedPurchase(o, "pay_2"))
	assert.ErrorIs(t, err, payment.ErrOrderNotPending)
}

func TestPaymentRepository_CompleteRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewPaymentRepository(db)
	purchases := postgres.NewPurchaseRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "dup@example.com")
	testutil.CreateLicense(t, db, u.ID, license.PlanPersonal)
	o := newOrder(t, repo, "order_2", u.ID, license.PlanPersonal)

	l := license.New(u.ID, o.Plan, "PERS-PERS-PERS-PERS", time.Now())
	err := repo.Complete(ctx, o.ID, l, completedPurchase(o, "pay_3"))
	assert.ErrorIs(t, err, license.ErrActiveLicenseExists)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.OrderCreated, got.Status, "order transition must roll back")

	list, err := purchases.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "no orphan purchase")
}

func TestPaymentRepository_ExpireStaleAndMarkFailed(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewPaymentRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "late@example.com")
	newOrder(t, repo, "order_old", u.ID, license.PlanPersonal)
	newOrder(t, repo, "order_bad", u.ID, license.PlanPersonal)

	require.NoError(t, repo.MarkFailed(ctx, "order_bad"))
	assert.ErrorIs(t, repo.MarkFailed(ctx, "order_bad"), payment.ErrOrderNotPending)

	n, err := repo.ExpireStale(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := repo.GetByID(ctx, "order_old")
	require.NoError(t, err)
	assert.Equal(t, payment.OrderExpired, got.Status)
}

func TestPaymentRepository_MarkCaptured(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewPaymentRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "twice@example.com")
	newOrder(t, repo, "order_dup", u.ID, license.PlanPro)
	newOrder(t, repo, "order_pending", u.ID, license.PlanPro)

	require.NoError(t, repo.MarkCaptured(ctx, "order_dup", "pay_dup"))
	assert.ErrorIs(t, repo.MarkCaptured(ctx, "order_dup", "pay_other"), payment.ErrOrderNotPending)

	got, err := repo.GetByID(ctx, "order_dup")
	require.NoError(t, err)
	assert.Equal(t, payment.OrderCaptured, got.Status)
	assert.Equal(t, "pay_dup", got.PaymentID)

	// the sweeper only expires unpaid orders
	n, err := repo.ExpireStale(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	captured, err := repo.ListByStatus(ctx, payment.OrderCaptured)
	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, "order_dup", captured[0].ID)

	pending, err := repo.GetByID(ctx, "order_pending")
	require.NoError(t, err)
	assert.Equal(t, payment.OrderExpired, pending.Status)
	assert.Empty(t, pending.PaymentID)
}
