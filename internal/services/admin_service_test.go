package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/domain/payment"
	"github.com/qsecurex/portal/internal/pkg/errors"
	"github.com/qsecurex/portal/internal/repository/postgres"
	"github.com/qsecurex/portal/internal/testutil"
)

func TestAdminService_StatsAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := NewAdminService(
		postgres.NewUserRepository(f.db),
		postgres.NewLicenseRepository(f.db),
		postgres.NewPurchaseRepository(f.db),
		postgres.NewFreeRequestRepository(f.db),
		f.log,
	)

	operator := testutil.CreateAdmin(t, f.db, "ops@example.com")
	buyer := testutil.CreateUser(t, f.db, "buyer@example.com")

	payments := f.payments(nil)
	checkout, err := payments.CreateOrder(ctx, buyer.ID, license.PlanPro)
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	_, err = payments.Verify(ctx, buyer.ID, payment.Verification{
		OrderID: checkout.OrderID, PaymentID: "pay_s", Signature: f.gateway.Sign(checkout.OrderID, "pay_s"),
	})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	stats, err := admin.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalUsers != 2 || stats.ActiveLicenses != 1 || stats.TotalRevenue != "4999.00" {
		t.Errorf("stats = %+v", stats)
	}

	err = admin.DeleteUser(ctx, operator.ID, operator.ID)
	wantAppError(t, err, errors.ErrCodeBadRequest, http.StatusBadRequest)

	if err := admin.DeleteUser(ctx, operator.ID, buyer.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	err = admin.DeleteUser(ctx, operator.ID, buyer.ID)
	wantAppError(t, err, errors.ErrCodeNotFound, http.StatusNotFound)

	stats, _ = admin.Stats(ctx)
	if stats.TotalUsers != 1 || stats.ActiveLicenses != 0 || stats.TotalRevenue != "0.00" {
		t.Errorf("stats after delete = %+v", stats)
	}
}
