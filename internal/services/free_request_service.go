package services

import (
	"context"
	"fmt"
	"time"

	"github.com/qsecurex/portal/internal/domain/freerequest"
	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/pkg/errors"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/metrics"
)

// FreeRequestService implements freerequest.Service
type FreeRequestService struct {
	repo   freerequest.Repository
	keyGen license.KeyGenerator
	logger *logger.Logger
}

// NewFreeRequestService creates a new free license request service
func NewFreeRequestService(repo freerequest.Repository, keyGen license.KeyGenerator, log *logger.Logger) freerequest.Service {
	if keyGen == nil {
		keyGen = license.GenerateKey
	}
	return &FreeRequestService{repo: repo, keyGen: keyGen, logger: log}
}

// Create files a pending request
func (s *FreeRequestService) Create(ctx context.Context, userID string, plan license.Plan) (*freerequest.Request, error) {
	if !freerequest.Requestable(plan) {
		return nil, errors.BadRequest("Invalid plan")
	}

	req := &freerequest.Request{UserID: userID, RequestedPlan: plan}
	if err := s.repo.Create(ctx, req); err != nil {
		if errors.Is(err, freerequest.ErrPendingExists) {
			return nil, errors.Conflict(fmt.Sprintf("You already have a pending %s license request", plan))
		}
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":    userID,
		"request_id": req.ID,
		"plan":       plan,
	}).Info("Free license requested")
	return req, nil
}

// ListByUser returns the user's requests
func (s *FreeRequestService) ListByUser(ctx context.Context, userID string) ([]*freerequest.Request, error) {
	return s.repo.ListByUser(ctx, userID)
}

// List returns requests for review
func (s *FreeRequestService) List(ctx context.Context, status freerequest.Status) ([]*freerequest.Request, error) {
	return s.repo.List(ctx, status)
}

// Approve issues a license with a generated key and links it to the request
func (s *FreeRequestService) Approve(ctx context.Context, id string) (*license.License, error) {
	req, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, errors.Conflict("Request has already been processed")
	}

	l := license.New(req.UserID, req.RequestedPlan, "", time.Now())
	_, err = license.IssueWithRetry(s.keyGen, license.MaxKeyAttempts, func(key string) error {
		l.LicenseKey = key
		return s.repo.Approve(ctx, id, l)
	}, metrics.RecordKeyCollision)
	if err != nil {
		if errors.Is(err, freerequest.ErrNotPending) {
			return nil, errors.Conflict("Request has already been processed")
		}
		return nil, issuanceError(err, req.RequestedPlan, "User already has an active %s license")
	}

	metrics.RecordLicenseIssued(string(l.Plan), "free_request")
	s.logger.WithFields(map[string]interface{}{
		"user_id":    l.UserID,
		"request_id": id,
		"license_id": l.ID,
		"key":        license.MaskKey(l.LicenseKey),
	}).Info("Free license request approved")
	return l, nil
}

// Reject closes a pending request without issuing a license
func (s *FreeRequestService) Reject(ctx context.Context, id string) (*freerequest.Request, error) {
	req, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, errors.Conflict("Request has already been processed")
	}

	if err := s.repo.Reject(ctx, id); err != nil {
		if errors.Is(err, freerequest.ErrNotPending) {
			return nil, errors.Conflict("Request has already been processed")
		}
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":    req.UserID,
		"request_id": id,
	}).Info("Free license request rejected")
	return s.repo.GetByID(ctx, id)
}

func (s *FreeRequestService) get(ctx context.Context, id string) (*freerequest.Request, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if appErr, ok := errors.As(err); ok && appErr.Code == errors.ErrCodeNotFound {
			return nil, errors.NotFound("Request")
		}
		return nil, err
	}
	return req, nil
}
