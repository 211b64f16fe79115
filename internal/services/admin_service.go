package services

import (
	"context"

	"github.com/qsecurex/portal/internal/domain/freerequest"
	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/domain/purchase"
	"github.com/qsecurex/portal/internal/domain/user"
	"github.com/qsecurex/portal/internal/pkg/errors"
	"github.com/qsecurex/portal/internal/pkg/logger"
)

// AdminStats summarizes the portal for the back office
type AdminStats struct {
	TotalUsers          int64  `json:"totalUsers"`
	ActiveLicenses      int64  `json:"activeLicenses"`
	TotalRevenue        string `json:"totalRevenue"`
	PendingFreeRequests int64  `json:"pendingFreeRequests"`
}

// AdminService serves back-office reads and account removal
type AdminService struct {
	users     user.Repository
	licenses  license.Repository
	purchases purchase.Repository
	requests  freerequest.Repository
	logger    *logger.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	users user.Repository,
	licenses license.Repository,
	purchases purchase.Repository,
	requests freerequest.Repository,
	log *logger.Logger,
) *AdminService {
	return &AdminService{
		users:     users,
		licenses:  licenses,
		purchases: purchases,
		requests:  requests,
		logger:    log,
	}
}

// Stats returns headline counts and revenue
func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.licenses.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.purchases.TotalRevenue(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.requests.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminStats{
		TotalUsers:          users,
		ActiveLicenses:      active,
		TotalRevenue:        purchase.FormatMinor(revenue),
		PendingFreeRequests: pending,
	}, nil
}

// ListUsers returns a page of users
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]*user.User, int64, error) {
	return s.users.List(ctx, limit, offset)
}

// DeleteUser removes another user's account and everything it owns
func (s *AdminService) DeleteUser(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return errors.BadRequest("Cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithFields(map[string]interface{}{
		"actor_id": actorID,
		"user_id":  id,
	}).Info("User deleted")
	return nil
}

// ListPurchases returns every purchase
func (s *AdminService) ListPurchases(ctx context.Context) ([]*purchase.Purchase, error) {
	return s.purchases.List(ctx)
}
