package download

import "time"

// GlobalFreeLimit is the number of free-trial downloads available across all users
const GlobalFreeLimit = 20

// CounterFreeTrial names the authoritative free-trial counter row
const CounterFreeTrial = "free_trial"

// Tier is a downloadable product edition
type Tier string

const (
	TierFree     Tier = "free"
	TierPersonal Tier = "personal"
	TierPro      Tier = "pro"
)

// Eligibility reason codes
const (
	CodeDisabled          = "disabled"
	CodeAlreadyDownloaded = "already_downloaded"
	CodeLimitReached      = "limit_reached"
)

// FreeDownload records that a user consumed their free-trial download
type FreeDownload struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Platform     string    `json:"platform"`
	DownloadedAt time.Time `json:"downloadedAt"`
}

// Eligibility is the advisory answer to "may this user take a free download"
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
	Code     string `json:"code,omitempty"`
}

// QuotaStatus is the public view of the free-trial pool
type QuotaStatus struct {
	Remaining int  `json:"remaining"`
	Total     int  `json:"total"`
	Limit     int  `json:"limit"`
	Enabled   bool `json:"enabled"`
}

// Settings is the admin view of the free-trial pool
type Settings struct {
	Enabled        bool `json:"enabled"`
	TotalDownloads int  `json:"totalDownloads"`
	Limit          int  `json:"limit"`
	Remaining      int  `json:"remaining"`
}

// UserStatus reports whether the user already took the free download
type UserStatus struct {
	HasDownloaded bool `json:"hasDownloaded"`
}

// Remaining returns the free slots left for a used count
func Remaining(used int) int {
	if n := GlobalFreeLimit - used; n > 0 {
		return n
	}
	return 0
}
