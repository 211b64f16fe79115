package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/qsecurex/portal/internal/domain/download"
	"github.com/qsecurex/portal/internal/domain/entitlement"
	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/pkg/errors"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/repository/postgres"
	"github.com/qsecurex/portal/internal/testutil"
)

var testArtifacts = map[download.Tier]download.Artifact{
	download.TierFree:     {Primary: "Apps/QSecureX.dmg", Fallback: "QSecureX.dmg"},
	download.TierPersonal: {Primary: "Apps/QSecureX.dmg", Fallback: "QSecureX.dmg"},
	download.TierPro:      {Primary: "Apps/QSecureX-Installer.dmg", Fallback: "QSecureX-Installer.dmg"},
}

type fixture struct {
	db          *sql.DB
	log         *logger.Logger
	gateway     *testutil.FakeGateway
	store       *testutil.FakeArtifactStore
	entitlement entitlement.Evaluator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	return &fixture{
		db:          db,
		log:         logger.New(logger.Config{Level: "error", Format: "json"}),
		gateway:     testutil.NewFakeGateway(),
		store:       testutil.NewFakeArtifactStore("Apps/QSecureX.dmg", "Apps/QSecureX-Installer.dmg"),
		entitlement: NewEntitlementService(postgres.NewLicenseRepository(db), postgres.NewDownloadRepository(db)),
	}
}

func (f *fixture) downloads() *DownloadService {
	return NewDownloadService(
		f.entitlement,
		postgres.NewDownloadRepository(f.db),
		postgres.NewSettingRepository(f.db),
		f.store,
		testArtifacts,
		time.Hour,
		f.log,
	).(*DownloadService)
}

func (f *fixture) payments(keyGen license.KeyGenerator) *PaymentService {
	return NewPaymentService(
		f.gateway,
		postgres.NewPaymentRepository(f.db),
		postgres.NewLicenseRepository(f.db),
		keyGen,
		PaymentConfig{Currency: "INR", OrderTTL: time.Hour},
		f.log,
	).(*PaymentService)
}

// sequence returns a key generator that replays keys in order
func sequence(keys ...string) license.KeyGenerator {
	i := 0
	return func() (string, error) {
		k := keys[i%len(keys)]
		i++
		return k, nil
	}
}

// wantAppError asserts err is an AppError with the given code and status
func wantAppError(t *testing.T, err error, code string, status int) *errors.AppError {
	t.Helper()
	appErr, ok := errors.As(err)
	if !ok {
		t.Fatalf("error = %v, want AppError %s", err, code)
	}
	if appErr.Code != code || appErr.StatusCode != status {
		t.Fatalf("error = %s/%d (%s), want %s/%d", appErr.Code, appErr.StatusCode, appErr.Message, code, status)
	}
	return appErr
}
