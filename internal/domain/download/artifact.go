package download

import (
	"context"
	"errors"
	"time"
)

// ErrArtifactNotFound is returned by an ArtifactStore when the object is missing
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactStore issues time-limited download links for stored objects
type ArtifactStore interface {
	// SignedURL returns a URL for path valid for ttl. Missing objects are
	// reported with ErrArtifactNotFound.
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)

	// Name identifies the backing provider in logs
	Name() string
}

// Artifact is the primary and fallback location of a tier's installer
type Artifact struct {
	Primary  string
	Fallback string
}
