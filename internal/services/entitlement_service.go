package services

import (
	"context"

	"github.com/qsecurex/portal/internal/domain/download"
	"github.com/qsecurex/portal/internal/domain/entitlement"
	"github.com/qsecurex/portal/internal/domain/license"
)

// EntitlementService implements entitlement.Evaluator over the repositories
type EntitlementService struct {
	licenses  license.Repository
	downloads download.Repository
}

// NewEntitlementService creates a new entitlement evaluator
func NewEntitlementService(licenses license.Repository, downloads download.Repository) entitlement.Evaluator {
	return &EntitlementService{licenses: licenses, downloads: downloads}
}

// HasActiveLicense reports whether the user holds an active license for plan
func (s *EntitlementService) HasActiveLicense(ctx context.Context, userID string, plan license.Plan) (bool, error) {
	return s.licenses.HasActive(ctx, userID, plan)
}

// RemainingFreeSlots returns the free-trial slots left in the global pool
func (s *EntitlementService) RemainingFreeSlots(ctx context.Context) (int, error) {
	used, err := s.downloads.CountAll(ctx)
	if err != nil {
		return 0, err
	}
	return download.Remaining(used), nil
}

// HasUserConsumedFreeSlot reports whether the user took the free download
func (s *EntitlementService) HasUserConsumedFreeSlot(ctx context.Context, userID string) (bool, error) {
	return s.downloads.HasUserDownloaded(ctx, userID)
}
