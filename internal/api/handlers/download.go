package handlers

import (
	"net/http"
	"strings"

	"github.com/qsecurex/portal/internal/api/dto"
	"github.com/qsecurex/portal/internal/domain/download"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/utils"
)

// DownloadHandler serves installer downloads
type DownloadHandler struct {
	service download.Service
	logger  *logger.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(service download.Service, log *logger.Logger) *DownloadHandler {
	return &DownloadHandler{service: service, logger: log}
}

// CheckEligibility is the advisory pre-flight for the free download
// @Summary Free download eligibility
// @Tags Downloads
// @Produce json
// @Security BearerAuth
// @Success 200 {object} download.Eligibility
// @Router /download/check-eligibility [get]
func (h *DownloadHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	e, err := h.service.CheckEligibility(r.Context(), userID)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, e)
}

// FreeDMG consumes the caller's free slot and redirects to the installer
// @Summary Free trial installer
// @Tags Downloads
// @Security BearerAuth
// @Param platform query string false "Client platform" default(macos)
// @Success 302 "Redirect to signed URL"
// @Failure 403 {object} utils.ErrorResponse "Disabled or already downloaded"
// @Failure 429 {object} utils.ErrorResponse "Free quota exhausted"
// @Failure 500 {object} utils.ErrorResponse "Storage error"
// @Router /download/macos-dmg [get]
func (h *DownloadHandler) FreeDMG(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	url, err := h.service.FreeLink(r.Context(), userID, r.URL.Query().Get("platform"))
	if err != nil {
		writeErr(w, err)
		return
	}
	h.redirect(w, r, url)
}

// PersonalDMG redirects licensed Personal users to the installer
// @Summary Personal installer
// @Tags Downloads
// @Security BearerAuth
// @Success 302 "Redirect to signed URL"
// @Failure 403 {object} utils.ErrorResponse "No active Personal license"
// @Router /download/macos-personal [get]
func (h *DownloadHandler) PersonalDMG(w http.ResponseWriter, r *http.Request) {
	h.licensed(w, r, download.TierPersonal)
}

// ProDMG redirects licensed Pro users to the installer
// @Summary Pro installer
// @Tags Downloads
// @Security BearerAuth
// @Success 302 "Redirect to signed URL"
// @Failure 403 {object} utils.ErrorResponse "No active Pro license"
// @Router /download/macos-pro [get]
func (h *DownloadHandler) ProDMG(w http.ResponseWriter, r *http.Request) {
	h.licensed(w, r, download.TierPro)
}

// Remaining reports the public free-trial quota
// @Summary Free download quota
// @Tags Downloads
// @Produce json
// @Success 200 {object} download.QuotaStatus
// @Router /download/remaining [get]
func (h *DownloadHandler) Remaining(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.QuotaStatus(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, q)
}

// UserStatus reports whether the caller already took the free download
// @Summary Free download status for the caller
// @Tags Downloads
// @Produce json
// @Security BearerAuth
// @Success 200 {object} download.UserStatus
// @Router /download/user-status [get]
func (h *DownloadHandler) UserStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	s, err := h.service.UserStatus(r.Context(), userID)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, s)
}

func (h *DownloadHandler) licensed(w http.ResponseWriter, r *http.Request, tier download.Tier) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	url, err := h.service.LicensedLink(r.Context(), userID, tier)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.redirect(w, r, url)
}

// redirect sends a 302 to the signed URL. XHR clients that cannot follow
// cross-origin redirects ask for JSON instead.
func (h *DownloadHandler) redirect(w http.ResponseWriter, r *http.Request, url string) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		utils.WriteSuccess(w, http.StatusOK, dto.DownloadLinkResponse{URL: url})
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
