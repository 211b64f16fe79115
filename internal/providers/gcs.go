package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/qsecurex/portal/internal/config"
	"github.com/qsecurex/portal/internal/domain/download"
)

// GCSStore signs installer downloads from a Google Cloud Storage bucket
type GCSStore struct {
	bucket *storage.BucketHandle
	client *storage.Client
}

// NewGCSStore opens a GCS client, using the service account file when set
func NewGCSStore(ctx context.Context, cfg config.StorageConfig) (*GCSStore, error) {
	var opts []option.ClientOption
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSStore{bucket: client.Bucket(cfg.Bucket), client: client}, nil
}

// Name identifies the provider in logs
func (g *GCSStore) Name() string {
	return "gcs"
}

// SignedURL checks the object exists and returns a V4 signed GET URL
func (g *GCSStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if _, err := g.bucket.Object(path).Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", fmt.Errorf("%s: %w", path, download.ErrArtifactNotFound)
		}
		return "", fmt.Errorf("stat object %s: %w", path, err)
	}

	url, err := g.bucket.SignedURL(path, &storage.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", path, err)
	}
	return url, nil
}

// Close releases the underlying client
func (g *GCSStore) Close() error {
	return g.client.Close()
}
