package dto

// ToggleDownloadsRequest enables or disables free downloads
type ToggleDownloadsRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// ResetDownloadsResponse reports how many free download records were deleted
type ResetDownloadsResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

// DownloadLinkResponse is returned instead of a redirect when the client
// asks for JSON
type DownloadLinkResponse struct {
	URL string `json:"url"`
}
