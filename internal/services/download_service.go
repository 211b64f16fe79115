package services

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/qsecurex/portal/internal/domain/download"
	"github.com/qsecurex/portal/internal/domain/entitlement"
	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/domain/setting"
	"github.com/qsecurex/portal/internal/pkg/errors"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/metrics"
)

const (
	msgFreeDisabled      = "Free downloads are currently disabled."
	msgAlreadyDownloaded = "You have already downloaded the free version. Please purchase a license for additional downloads."
	msgLimitReached      = "Free download limit reached. Please purchase a license."
	msgStorageMissing    = "Download failed - file not found in storage"
)

var licenseRequiredMsg = map[download.Tier]string{
	download.TierPersonal: "Personal license required. Please purchase a Personal Edition license to download.",
	download.TierPro:      "Pro license required. Please purchase a Pro Edition license to download.",
}

// DownloadService implements download.Service
type DownloadService struct {
	entitlement entitlement.Evaluator
	repo        download.Repository
	settings    setting.Repository
	store       download.ArtifactStore
	artifacts   map[download.Tier]download.Artifact
	linkTTL     time.Duration
	logger      *logger.Logger
}

// NewDownloadService creates a new download gatekeeper. A nil store means
// downloads are not configured.
func NewDownloadService(
	ent entitlement.Evaluator,
	repo download.Repository,
	settings setting.Repository,
	store download.ArtifactStore,
	artifacts map[download.Tier]download.Artifact,
	linkTTL time.Duration,
	log *logger.Logger,
) download.Service {
	if linkTTL <= 0 {
		linkTTL = 4 * time.Hour
	}
	return &DownloadService{
		entitlement: ent,
		repo:        repo,
		settings:    settings,
		store:       store,
		artifacts:   artifacts,
		linkTTL:     linkTTL,
		logger:      log,
	}
}

// CheckEligibility answers whether the user may take the free download now
func (s *DownloadService) CheckEligibility(ctx context.Context, userID string) (*download.Eligibility, error) {
	enabled, err := s.enabled(ctx)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return &download.Eligibility{Reason: msgFreeDisabled, Code: download.CodeDisabled}, nil
	}

	consumed, err := s.entitlement.HasUserConsumedFreeSlot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if consumed {
		return &download.Eligibility{Reason: msgAlreadyDownloaded, Code: download.CodeAlreadyDownloaded}, nil
	}

	remaining, err := s.entitlement.RemainingFreeSlots(ctx)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		return &download.Eligibility{Reason: msgLimitReached, Code: download.CodeLimitReached}, nil
	}

	return &download.Eligibility{Eligible: true}, nil
}

// FreeLink re-runs every eligibility check, resolves the link, then
// consumes the slot. A storage failure therefore never burns a slot.
func (s *DownloadService) FreeLink(ctx context.Context, userID, platform string) (string, error) {
	if s.store == nil {
		return "", errors.NotConfigured("Download service not configured")
	}
	if platform == "" {
		platform = "macos"
	}

	elig, err := s.CheckEligibility(ctx, userID)
	if err != nil {
		return "", err
	}
	if !elig.Eligible {
		metrics.RecordDownload(string(download.TierFree), "denied_"+elig.Code)
		return "", eligibilityError(elig.Code)
	}

	url, err := s.resolve(ctx, download.TierFree)
	if err != nil {
		return "", err
	}

	err = s.repo.Record(ctx, &download.FreeDownload{UserID: userID, Platform: platform}, download.GlobalFreeLimit)
	switch {
	case errors.Is(err, download.ErrAlreadyDownloaded):
		metrics.RecordDownload(string(download.TierFree), "denied_"+download.CodeAlreadyDownloaded)
		return "", eligibilityError(download.CodeAlreadyDownloaded)
	case errors.Is(err, download.ErrQuotaExhausted):
		metrics.RecordDownload(string(download.TierFree), "denied_"+download.CodeLimitReached)
		return "", eligibilityError(download.CodeLimitReached)
	case err != nil:
		return "", err
	}

	metrics.RecordDownload(string(download.TierFree), "granted")
	s.refreshGauge(ctx)
	s.logger.WithFields(map[string]interface{}{
		"user_id":  userID,
		"platform": platform,
	}).Info("Free download granted")

	return url, nil
}

// LicensedLink returns the installer link for a paid tier
func (s *DownloadService) LicensedLink(ctx context.Context, userID string, tier download.Tier) (string, error) {
	msg, ok := licenseRequiredMsg[tier]
	if !ok {
		return "", errors.BadRequest("Invalid download tier")
	}
	if s.store == nil {
		return "", errors.NotConfigured("Download service not configured")
	}

	has, err := s.entitlement.HasActiveLicense(ctx, userID, license.Plan(tier))
	if err != nil {
		return "", err
	}
	if !has {
		metrics.RecordDownload(string(tier), "denied_no_license")
		return "", errors.Rule(errors.ErrCodeLicenseRequired, msg, http.StatusForbidden)
	}

	url, err := s.resolve(ctx, tier)
	if err != nil {
		return "", err
	}

	metrics.RecordDownload(string(tier), "granted")
	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"tier":    tier,
	}).Info("Licensed download granted")
	return url, nil
}

// QuotaStatus returns the public free-trial pool status
func (s *DownloadService) QuotaStatus(ctx context.Context) (*download.QuotaStatus, error) {
	used, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	enabled, err := s.enabled(ctx)
	if err != nil {
		return nil, err
	}
	return &download.QuotaStatus{
		Remaining: download.Remaining(used),
		Total:     used,
		Limit:     download.GlobalFreeLimit,
		Enabled:   enabled,
	}, nil
}

// UserStatus reports whether the user took the free download
func (s *DownloadService) UserStatus(ctx context.Context, userID string) (*download.UserStatus, error) {
	has, err := s.entitlement.HasUserConsumedFreeSlot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &download.UserStatus{HasDownloaded: has}, nil
}

// Settings returns the admin view of the free-trial pool
func (s *DownloadService) Settings(ctx context.Context) (*download.Settings, error) {
	q, err := s.QuotaStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &download.Settings{
		Enabled:        q.Enabled,
		TotalDownloads: q.Total,
		Limit:          q.Limit,
		Remaining:      q.Remaining,
	}, nil
}

// SetEnabled toggles the free-trial download
func (s *DownloadService) SetEnabled(ctx context.Context, enabled bool) (*download.Settings, error) {
	if err := s.settings.Set(ctx, setting.KeyFreeDownloadEnabled, strconv.FormatBool(enabled)); err != nil {
		return nil, err
	}
	s.logger.WithFields(map[string]interface{}{"enabled": enabled}).Info("Free downloads toggled")
	return s.Settings(ctx)
}

// Reset deletes every free download and restores the full pool
func (s *DownloadService) Reset(ctx context.Context) (int64, error) {
	n, err := s.repo.Reset(ctx)
	if err != nil {
		return 0, err
	}
	s.refreshGauge(ctx)
	s.logger.WithFields(map[string]interface{}{"deleted": n}).Info("Free downloads reset")
	return n, nil
}

func (s *DownloadService) enabled(ctx context.Context) (bool, error) {
	value, found, err := s.settings.Get(ctx, setting.KeyFreeDownloadEnabled)
	if err != nil {
		return false, err
	}
	return setting.ParseBool(value, found), nil
}

// resolve signs the tier's primary path and falls back once
func (s *DownloadService) resolve(ctx context.Context, tier download.Tier) (string, error) {
	art, ok := s.artifacts[tier]
	if !ok || art.Primary == "" {
		return "", errors.NotConfigured("Download service not configured")
	}

	start := time.Now()
	url, err := s.store.SignedURL(ctx, art.Primary, s.linkTTL)
	if err == nil {
		metrics.RecordArtifactLink(string(tier), time.Since(start))
		return url, nil
	}

	log := s.logger.WithFields(map[string]interface{}{
		"tier":     tier,
		"provider": s.store.Name(),
		"primary":  art.Primary,
		"fallback": art.Fallback,
	})
	log.WithError(err).Warn("Primary artifact unavailable, trying fallback")

	if art.Fallback == "" || art.Fallback == art.Primary {
		log.Error("No fallback artifact configured")
		return "", errors.StorageError(msgStorageMissing, err)
	}

	url, fbErr := s.store.SignedURL(ctx, art.Fallback, s.linkTTL)
	if fbErr != nil {
		log.WithError(fbErr).Error("Fallback artifact unavailable")
		return "", errors.StorageError(msgStorageMissing, fbErr)
	}

	metrics.RecordArtifactLink(string(tier), time.Since(start))
	return url, nil
}

func (s *DownloadService) refreshGauge(ctx context.Context) {
	if remaining, err := s.entitlement.RemainingFreeSlots(ctx); err == nil {
		metrics.SetFreeSlotsRemaining(remaining)
	}
}

func eligibilityError(code string) error {
	switch code {
	case download.CodeDisabled:
		return errors.Rule(errors.ErrCodeNotEligible, msgFreeDisabled, http.StatusForbidden)
	case download.CodeAlreadyDownloaded:
		return errors.Rule(errors.ErrCodeNotEligible, msgAlreadyDownloaded, http.StatusForbidden)
	default:
		return errors.Rule(errors.ErrCodeQuotaExhausted, msgLimitReached, http.StatusTooManyRequests)
	}
}
