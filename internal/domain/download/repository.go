package download

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyDownloaded is returned when the user already holds a free download row
	ErrAlreadyDownloaded = errors.New("free download already recorded for user")

	// ErrQuotaExhausted is returned when the global free-trial counter is at its limit
	ErrQuotaExhausted = errors.New("free download quota exhausted")
)

// Repository persists free-trial downloads and the global counter
type Repository interface {
	// Record inserts the user's free download and increments the counter
	// below limit in one transaction
	Record(ctx context.Context, d *FreeDownload, limit int) error

	// CountAll returns the authoritative number of consumed free slots
	CountAll(ctx context.Context) (int, error)

	// HasUserDownloaded reports whether the user has a free download row
	HasUserDownloaded(ctx context.Context, userID string) (bool, error)

	// Reset deletes all free download rows and zeroes the counter
	Reset(ctx context.Context) (int64, error)
}
