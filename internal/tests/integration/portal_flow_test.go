package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/qsecurex/portal/internal/api/handlers"
	"github.com/qsecurex/portal/internal/api/router"
	"github.com/qsecurex/portal/internal/config"
	"github.com/qsecurex/portal/internal/domain/download"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/validator"
	"github.com/qsecurex/portal/internal/repository/postgres"
	"github.com/qsecurex/portal/internal/services"
	"github.com/qsecurex/portal/internal/testutil"
	"github.com/qsecurex/portal/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminEmail = "ops@qsecurex.io"

type portal struct {
	server  *httptest.Server
	gateway *testutil.FakeGateway
}

// newPortal wires the full HTTP stack over a migrated sqlite database
func newPortal(t *testing.T) *portal {
	t.Helper()

	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.CleanupDB(db) })

	cfg := &config.Config{
		Server: config.ServerConfig{FrontendURL: "http://localhost:5173", Environment: "test"},
		Auth: config.AuthConfig{
			JWTSecret:          "integration-secret",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
			BCryptCost:         4,
			AdminEmails:        []string{adminEmail},
		},
	}
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	val := validator.New()

	userRepo := postgres.NewUserRepository(db)
	licenseRepo := postgres.NewLicenseRepository(db)
	downloadRepo := postgres.NewDownloadRepository(db)
	requestRepo := postgres.NewFreeRequestRepository(db)

	gateway := testutil.NewFakeGateway()
	store := testutil.NewFakeArtifactStore("Apps/QSecureX.dmg", "Apps/QSecureX-Installer.dmg")

	entitlement := services.NewEntitlementService(licenseRepo, downloadRepo)
	licenseService := services.NewLicenseService(licenseRepo, userRepo, nil, log)
	paymentService := services.NewPaymentService(gateway, postgres.NewPaymentRepository(db), licenseRepo, nil,
		services.PaymentConfig{Currency: "INR", OrderTTL: time.Hour}, log)
	downloadService := services.NewDownloadService(entitlement, downloadRepo, postgres.NewSettingRepository(db), store,
		map[download.Tier]download.Artifact{
			download.TierFree:     {Primary: "Apps/QSecureX.dmg"},
			download.TierPersonal: {Primary: "Apps/QSecureX.dmg"},
			download.TierPro:      {Primary: "Apps/QSecureX-Installer.dmg"},
		}, time.Hour, log)
	adminService := services.NewAdminService(userRepo, licenseRepo, postgres.NewPurchaseRepository(db), requestRepo, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := router.New(ctx, cfg, log, &router.Handlers{
		Health:      handlers.NewHealthHandler(db, handlers.Backends{Storage: true, Payments: gateway.Configured()}, log),
		Auth:        handlers.NewAuthHandler(services.NewUserService(userRepo, cfg.Auth, log), cfg, log, val),
		Payment:     handlers.NewPaymentHandler(paymentService, log, val),
		License:     handlers.NewLicenseHandler(licenseService, log),
		FreeRequest: handlers.NewFreeRequestHandler(services.NewFreeRequestService(requestRepo, nil, log), log, val),
		Download:    handlers.NewDownloadHandler(downloadService, log),
		Device:      handlers.NewDeviceHandler(services.NewDeviceService(postgres.NewDeviceRepository(db), licenseRepo, log), log, val),
		Admin:       handlers.NewAdminHandler(adminService, licenseService, downloadService, log, val),
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &portal{server: srv, gateway: gateway}
}

// signUp registers an account and returns a client carrying its token
func (p *portal) signUp(t *testing.T, email string) *client.Client {
	t.Helper()
	anon := client.NewClient(client.Config{BaseURL: p.server.URL})
	resp, err := anon.Register(context.Background(), client.RegisterRequest{
		Email:    email,
		Password: "correct-horse-battery",
		Name:     strings.Split(email, "@")[0],
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	return client.NewClient(client.Config{BaseURL: p.server.URL, Token: resp.AccessToken})
}

func apiCode(t *testing.T, err error) string {
	t.Helper()
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "expected *client.APIError, got %v", err)
	return apiErr.Code
}

func TestPurchaseAndDownloadFlow(t *testing.T) {
	p := newPortal(t)
	ctx := context.Background()
	alice := p.signUp(t, "alice@example.com")

	t.Run("pro download needs a license", func(t *testing.T) {
		_, err := alice.Downloads().Link(ctx, client.TierPro, "")
		require.Error(t, err)
		assert.Equal(t, "LICENSE_REQUIRED", apiCode(t, err))
	})

	t.Run("forged signature fails the order", func(t *testing.T) {
		checkout, err := alice.Payments().CreateOrder(ctx, "personal")
		require.NoError(t, err)

		_, err = alice.Payments().Verify(ctx, client.VerifyRequest{
			OrderID:   checkout.OrderID,
			PaymentID: "pay_forged",
			Signature: strings.Repeat("0", 64),
			Plan:      "personal",
		})
		require.Error(t, err)
		assert.Equal(t, "SIGNATURE_INVALID", apiCode(t, err))

		licenses, err := alice.Licenses().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, licenses)
	})

	checkout, err := alice.Payments().CreateOrder(ctx, "pro")
	require.NoError(t, err)
	assert.Equal(t, int64(499900), checkout.Amount)
	assert.Equal(t, "INR", checkout.Currency)
	assert.Equal(t, p.gateway.ID, checkout.KeyID)

	signed := client.VerifyRequest{
		OrderID:   checkout.OrderID,
		PaymentID: "pay_0001",
		Signature: p.gateway.Sign(checkout.OrderID, "pay_0001"),
		Plan:      "pro",
	}
	result, err := alice.Payments().Verify(ctx, signed)
	require.NoError(t, err)
	require.NotNil(t, result.License)
	assert.Equal(t, "pro", result.License.Plan)
	assert.Equal(t, 3, result.License.MaxDevices)
	assert.Regexp(t, `^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`, result.License.LicenseKey)

	t.Run("replayed verification does not issue twice", func(t *testing.T) {
		_, err := alice.Payments().Verify(ctx, signed)
		require.Error(t, err)
		assert.Equal(t, "PAYMENT_ALREADY_PROCESSED", apiCode(t, err))

		licenses, err := alice.Licenses().List(ctx)
		require.NoError(t, err)
		assert.Len(t, licenses, 1)
	})

	t.Run("pro link resolves", func(t *testing.T) {
		link, err := alice.Downloads().Link(ctx, client.TierPro, "")
		require.NoError(t, err)
		assert.Contains(t, link, "Apps/QSecureX-Installer.dmg")
	})

	t.Run("free download is single use", func(t *testing.T) {
		elig, err := alice.Downloads().CheckEligibility(ctx)
		require.NoError(t, err)
		assert.True(t, elig.Eligible)

		_, err = alice.Downloads().Link(ctx, client.TierFree, "macos")
		require.NoError(t, err)

		_, err = alice.Downloads().Link(ctx, client.TierFree, "macos")
		require.Error(t, err)
		assert.Equal(t, "NOT_ELIGIBLE", apiCode(t, err))

		quota, err := client.NewClient(client.Config{BaseURL: p.server.URL}).Downloads().Remaining(ctx)
		require.NoError(t, err)
		assert.Equal(t, download.GlobalFreeLimit-1, quota.Remaining)
	})

	t.Run("devices are capped by the plan", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := alice.Devices().Register(ctx, client.RegisterDeviceRequest{
				DeviceID:   fmt.Sprintf("mac-%d", i),
				DeviceType: "mac",
			})
			require.NoError(t, err)
		}
		_, err := alice.Devices().Register(ctx, client.RegisterDeviceRequest{DeviceID: "mac-3", DeviceType: "mac"})
		require.Error(t, err)
		assert.Equal(t, "DEVICE_LIMIT_REACHED", apiCode(t, err))
	})
}

func TestFreeRequestApprovalFlow(t *testing.T) {
	p := newPortal(t)
	ctx := context.Background()
	admin := p.signUp(t, adminEmail)
	bob := p.signUp(t, "bob@example.com")

	me, err := admin.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", me.Role)

	_, err = bob.Admin().Stats(ctx)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apiCode(t, err))

	req, err := bob.Licenses().RequestFree(ctx, "personal")
	require.NoError(t, err)
	assert.Equal(t, "pending", req.Status)

	_, err = bob.Licenses().RequestFree(ctx, "personal")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apiCode(t, err))

	pending, err := admin.Admin().FreeRequests(ctx, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, req.ID, pending[0].ID)

	issued, err := admin.Admin().ApproveFreeRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "personal", issued.Plan)

	_, err = admin.Admin().RejectFreeRequest(ctx, req.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apiCode(t, err))

	licenses, err := bob.Licenses().List(ctx)
	require.NoError(t, err)
	require.Len(t, licenses, 1)
	assert.Equal(t, issued.LicenseKey, licenses[0].LicenseKey)

	link, err := bob.Downloads().Link(ctx, client.TierPersonal, "")
	require.NoError(t, err)
	assert.Contains(t, link, "Apps/QSecureX.dmg")

	stats, err := admin.Admin().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveLicenses)
	assert.Equal(t, int64(0), stats.PendingFreeRequests)

	settings, err := admin.Admin().SetDownloadsEnabled(ctx, false)
	require.NoError(t, err)
	assert.False(t, settings.Enabled)

	elig, err := bob.Downloads().CheckEligibility(ctx)
	require.NoError(t, err)
	assert.False(t, elig.Eligible)
	assert.Equal(t, download.CodeDisabled, elig.Code)
}
