package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qsecurex/portal/internal/api/dto"
	"github.com/qsecurex/portal/internal/domain/download"
	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/utils"
	"github.com/qsecurex/portal/internal/pkg/validator"
	"github.com/qsecurex/portal/internal/services"
)

// AdminHandler serves the back-office endpoints. Every route is mounted
// behind RequireAdmin.
type AdminHandler struct {
	admin     *services.AdminService
	licenses  license.Service
	downloads download.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	admin *services.AdminService,
	licenses license.Service,
	downloads download.Service,
	log *logger.Logger,
	val *validator.Validator,
) *AdminHandler {
	return &AdminHandler{
		admin:     admin,
		licenses:  licenses,
		downloads: downloads,
		logger:    log,
		validator: val,
	}
}

// Stats returns dashboard counters
// @Summary Admin dashboard stats
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.AdminStats
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, stats)
}

// ListUsers returns a page of users
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} utils.PaginatedResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p := utils.ParsePaginationParams(r)
	users, total, err := h.admin.ListUsers(r.Context(), p.PageSize, p.Offset)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dto.ToUserDTOs(users), p.Page, p.PageSize, total))
}

// DeleteUser removes an account and everything it owns
// @Summary Delete user
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 400 {object} utils.ErrorResponse "Cannot delete your own account"
// @Failure 404 {object} utils.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := h.admin.DeleteUser(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendLicense records a license the operator issued by hand
// @Summary Send license
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendLicenseRequest true "License details"
// @Success 201 {object} license.License
// @Failure 409 {object} utils.ErrorResponse "Key taken or plan already active"
// @Router /admin/send-license [post]
func (h *AdminHandler) SendLicense(w http.ResponseWriter, r *http.Request) {
	var req dto.SendLicenseRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	l, err := h.licenses.Grant(r.Context(), req.UserID, license.Plan(req.Plan), req.LicenseKey)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusCreated, "License sent", l)
}

// ListLicenses returns every license
// @Summary List licenses
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} license.License
// @Router /admin/licenses [get]
func (h *AdminHandler) ListLicenses(w http.ResponseWriter, r *http.Request) {
	licenses, err := h.licenses.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, licenses)
}

// LicenseHistory returns manually sent licenses
// @Summary License send history
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} license.HistoryEntry
// @Router /admin/license-history [get]
func (h *AdminHandler) LicenseHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.licenses.History(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, history)
}

// ListPurchases returns every purchase
// @Summary List purchases
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} purchase.Purchase
// @Router /admin/purchases [get]
func (h *AdminHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.admin.ListPurchases(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, purchases)
}

// DownloadSettings returns the toggle and quota
// @Summary Download settings
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} download.Settings
// @Router /admin/download-settings [get]
func (h *AdminHandler) DownloadSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.downloads.Settings(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, s)
}

// ToggleDownloads enables or disables free downloads
// @Summary Toggle free downloads
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ToggleDownloadsRequest true "Toggle"
// @Success 200 {object} download.Settings
// @Router /admin/download-settings/toggle [post]
func (h *AdminHandler) ToggleDownloads(w http.ResponseWriter, r *http.Request) {
	var req dto.ToggleDownloadsRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	s, err := h.downloads.SetEnabled(r.Context(), *req.Enabled)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"enabled": *req.Enabled,
	}).Info("Free downloads toggled")
	utils.WriteSuccess(w, http.StatusOK, s)
}

// ResetDownloads clears every free download and restores the quota
// @Summary Reset free downloads
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ResetDownloadsResponse
// @Router /admin/download-settings/reset [post]
func (h *AdminHandler) ResetDownloads(w http.ResponseWriter, r *http.Request) {
	n, err := h.downloads.Reset(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Free downloads reset", dto.ResetDownloadsResponse{DeletedCount: n})
}
