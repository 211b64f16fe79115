package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/qsecurex/portal/internal/api/middleware"
	"github.com/qsecurex/portal/internal/auth"
	"github.com/qsecurex/portal/internal/domain/download"
	"github.com/qsecurex/portal/internal/domain/user"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/validator"
	"github.com/qsecurex/portal/internal/repository/postgres"
	"github.com/qsecurex/portal/internal/services"
	"github.com/qsecurex/portal/internal/testutil"
)

type testEnv struct {
	db       *sql.DB
	gateway  *testutil.FakeGateway
	payment  *PaymentHandler
	download *DownloadHandler
	requests *FreeRequestHandler
	admin    *AdminHandler
	device   *DeviceHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	val := validator.New()

	users := postgres.NewUserRepository(db)
	licenses := postgres.NewLicenseRepository(db)
	downloads := postgres.NewDownloadRepository(db)
	requests := postgres.NewFreeRequestRepository(db)
	gateway := testutil.NewFakeGateway()
	store := testutil.NewFakeArtifactStore("Apps/QSecureX.dmg", "Apps/QSecureX-Installer.dmg")

	ent := services.NewEntitlementService(licenses, downloads)
	downloadSvc := services.NewDownloadService(ent, downloads, postgres.NewSettingRepository(db), store,
		map[download.Tier]download.Artifact{
			download.TierFree:     {Primary: "Apps/QSecureX.dmg"},
			download.TierPersonal: {Primary: "Apps/QSecureX.dmg"},
			download.TierPro:      {Primary: "Apps/QSecureX-Installer.dmg"},
		}, time.Hour, log)
	paymentSvc := services.NewPaymentService(gateway, postgres.NewPaymentRepository(db), licenses, nil,
		services.PaymentConfig{Currency: "INR", OrderTTL: time.Hour}, log)
	licenseSvc := services.NewLicenseService(licenses, users, nil, log)
	adminSvc := services.NewAdminService(users, licenses, postgres.NewPurchaseRepository(db), requests, log)

	return &testEnv{
		db:       db,
		gateway:  gateway,
		payment:  NewPaymentHandler(paymentSvc, log, val),
		download: NewDownloadHandler(downloadSvc, log),
		requests: NewFreeRequestHandler(services.NewFreeRequestService(requests, nil, log), log, val),
		admin:    NewAdminHandler(adminSvc, licenseSvc, downloadSvc, log, val),
		device:   NewDeviceHandler(services.NewDeviceService(postgres.NewDeviceRepository(db), licenses, log), log, val),
	}
}

// newRequest builds a request authenticated as u. params are chi URL params
// as alternating key/value pairs.
func newRequest(method, target string, body interface{}, u *user.User, params ...string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if u != nil {
		ctx = middleware.WithClaims(ctx, &auth.Claims{UserID: u.ID, Email: u.Email, Role: u.Role})
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for i := 0; i+1 < len(params); i += 2 {
			rctx.URLParams.Add(params[i], params[i+1])
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v (body %q)", err, rr.Body.String())
	}
	return env
}
