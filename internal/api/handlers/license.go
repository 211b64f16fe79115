package handlers

import (
	"net/http"

	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/utils"
)

// LicenseHandler serves the caller's licenses
type LicenseHandler struct {
	service license.Service
	logger  *logger.Logger
}

// NewLicenseHandler creates a new license handler
func NewLicenseHandler(service license.Service, log *logger.Logger) *LicenseHandler {
	return &LicenseHandler{service: service, logger: log}
}

// List returns the caller's licenses
// @Summary My licenses
// @Tags Licenses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} license.License
// @Router /licenses [get]
func (h *LicenseHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	licenses, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, licenses)
}
