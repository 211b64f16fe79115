package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/domain/user"
	"github.com/qsecurex/portal/internal/pkg/errors"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/metrics"
)

// LicenseService implements license.Service
type LicenseService struct {
	repo   license.Repository
	users  user.Repository
	keyGen license.KeyGenerator
	logger *logger.Logger
}

// NewLicenseService creates a new license service. A nil keyGen uses
// license.GenerateKey.
func NewLicenseService(repo license.Repository, users user.Repository, keyGen license.KeyGenerator, log *logger.Logger) license.Service {
	if keyGen == nil {
		keyGen = license.GenerateKey
	}
	return &LicenseService{
		repo:   repo,
		users:  users,
		keyGen: keyGen,
		logger: log,
	}
}

// Issue creates an active license with a generated key
func (s *LicenseService) Issue(ctx context.Context, userID string, plan license.Plan) (*license.License, error) {
	if !plan.Valid() {
		return nil, errors.BadRequest("Invalid plan")
	}

	l := license.New(userID, plan, "", time.Now())
	_, err := license.IssueWithRetry(s.keyGen, license.MaxKeyAttempts, func(key string) error {
		l.LicenseKey = key
		return s.repo.Create(ctx, l)
	}, metrics.RecordKeyCollision)
	if err != nil {
		return nil, issuanceError(err, plan, "User already has an active %s license")
	}

	metrics.RecordLicenseIssued(string(plan), "issue")
	s.logIssued(l, "issue")
	return l, nil
}

// Grant records an operator-chosen key. A taken key is a conflict and is
// not retried.
func (s *LicenseService) Grant(ctx context.Context, userID string, plan license.Plan, key string) (*license.License, error) {
	key = strings.TrimSpace(key)
	if userID == "" || key == "" || plan == "" {
		return nil, errors.ValidationError("Missing required fields", map[string]string{
			"required": "userId, plan, licenseKey",
		})
	}
	if !plan.Valid() {
		return nil, errors.BadRequest("Invalid plan")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	l := license.New(userID, plan, key, now)
	l.SentAt = &now

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, issuanceError(err, plan, "User already has an active %s license")
	}

	metrics.RecordLicenseIssued(string(plan), "admin")
	s.logIssued(l, "admin")
	return l, nil
}

// ListByUser returns the user's licenses
func (s *LicenseService) ListByUser(ctx context.Context, userID string) ([]*license.License, error) {
	return s.repo.ListByUser(ctx, userID)
}

// List returns every license
func (s *LicenseService) List(ctx context.Context) ([]*license.License, error) {
	return s.repo.List(ctx)
}

// History returns manually sent licenses, most recent first
func (s *LicenseService) History(ctx context.Context) ([]*license.HistoryEntry, error) {
	return s.repo.ListSent(ctx)
}

func (s *LicenseService) logIssued(l *license.License, source string) {
	s.logger.WithFields(map[string]interface{}{
		"user_id":    l.UserID,
		"license_id": l.ID,
		"plan":       l.Plan,
		"key":        license.MaskKey(l.LicenseKey),
		"source":     source,
	}).Info("License issued")
}

// issuanceError translates license repository outcomes. ownedMsg is a
// format string taking the plan name.
func issuanceError(err error, plan license.Plan, ownedMsg string) error {
	switch {
	case errors.Is(err, license.ErrDuplicateKey):
		return errors.Conflict("License key already exists")
	case errors.Is(err, license.ErrActiveLicenseExists):
		return errors.Conflict(fmt.Sprintf(ownedMsg, plan))
	case errors.Is(err, license.ErrKeySpaceExhausted):
		return errors.Wrap(err, errors.ErrCodeKeyGeneration,
			"Failed to generate a unique license key", http.StatusInternalServerError)
	}
	return err
}
