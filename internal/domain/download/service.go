package download

import "context"

// Service gates installer downloads
type Service interface {
	// CheckEligibility is advisory; FreeLink re-runs every check
	CheckEligibility(ctx context.Context, userID string) (*Eligibility, error)

	// FreeLink consumes the user's free slot and returns the signed URL
	FreeLink(ctx context.Context, userID, platform string) (string, error)

	// LicensedLink returns the signed URL for a paid tier
	LicensedLink(ctx context.Context, userID string, tier Tier) (string, error)

	QuotaStatus(ctx context.Context) (*QuotaStatus, error)

	UserStatus(ctx context.Context, userID string) (*UserStatus, error)

	Settings(ctx context.Context) (*Settings, error)

	SetEnabled(ctx context.Context, enabled bool) (*Settings, error)

	// Reset clears every free download and returns how many were deleted
	Reset(ctx context.Context) (int64, error)
}
