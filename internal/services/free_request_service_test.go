package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/qsecurex/portal/internal/domain/freerequest"
	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/pkg/errors"
	"github.com/qsecurex/portal/internal/repository/postgres"
	"github.com/qsecurex/portal/internal/testutil"
)

func TestFreeRequestService_ApproveAndReject(t *testing.T) {
	f := newFixture(t)
	svc := NewFreeRequestService(postgres.NewFreeRequestRepository(f.db), nil, f.log)
	ctx := context.Background()

	u := testutil.CreateUser(t, f.db, "student@example.com")

	req, err := svc.Create(ctx, u.ID, license.PlanPro)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Create(ctx, u.ID, license.PlanPro)
	wantAppError(t, err, errors.ErrCodeConflict, http.StatusConflict)

	_, err = svc.Create(ctx, u.ID, license.PlanEnterprise)
	wantAppError(t, err, errors.ErrCodeBadRequest, http.StatusBadRequest)

	l, err := svc.Approve(ctx, req.ID)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if l.Plan != license.PlanPro || l.MaxDevices != 3 || !license.IsGeneratedKey(l.LicenseKey) {
		t.Errorf("license = %+v", l)
	}

	has, _ := f.entitlement.HasActiveLicense(ctx, u.ID, license.PlanPro)
	if !has {
		t.Error("approved request did not grant entitlement")
	}

	_, err = svc.Approve(ctx, req.ID)
	wantAppError(t, err, errors.ErrCodeConflict, http.StatusConflict)
	_, err = svc.Reject(ctx, req.ID)
	wantAppError(t, err, errors.ErrCodeConflict, http.StatusConflict)

	_, err = svc.Approve(ctx, "missing")
	appErr := wantAppError(t, err, errors.ErrCodeNotFound, http.StatusNotFound)
	if appErr.Message != "Request not found" {
		t.Errorf("message = %q", appErr.Message)
	}

	personal, err := svc.Create(ctx, u.ID, license.PlanPersonal)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	rejected, err := svc.Reject(ctx, personal.ID)
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if rejected.Status != freerequest.StatusRejected || rejected.RejectedAt == nil {
		t.Errorf("request = %+v", rejected)
	}
}
