package providers

import (
	"context"
	"fmt"

	"github.com/qsecurex/portal/internal/config"
	"github.com/qsecurex/portal/internal/domain/download"
)

// NewArtifactStore returns the configured store, or nil when downloads
// are not configured
func NewArtifactStore(ctx context.Context, cfg config.StorageConfig) (download.ArtifactStore, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "s3":
		store, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "gcs":
		store, err := NewGCSStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// Artifacts maps each tier to its configured object paths
func Artifacts(cfg config.StorageConfig) map[download.Tier]download.Artifact {
	return map[download.Tier]download.Artifact{
		download.TierFree:     {Primary: cfg.FreeArtifact.Primary, Fallback: cfg.FreeArtifact.Fallback},
		download.TierPersonal: {Primary: cfg.PersonalArtifact.Primary, Fallback: cfg.PersonalArtifact.Fallback},
		download.TierPro:      {Primary: cfg.ProArtifact.Primary, Fallback: cfg.ProArtifact.Fallback},
	}
}
