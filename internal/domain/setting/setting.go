package setting

import (
	"context"
	"strconv"
	"time"
)

// KeyFreeDownloadEnabled toggles the free-trial download
const KeyFreeDownloadEnabled = "free_download_enabled"

// Setting is an operator-controlled key/value pair
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository persists admin settings
type Repository interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set upserts the value for key
	Set(ctx context.Context, key, value string) error
}

// ParseBool interprets a stored flag. A missing key counts as enabled.
func ParseBool(value string, found bool) bool {
	if !found {
		return true
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return true
	}
	return b
}
