package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qsecurex/portal/internal/api/dto"
	"github.com/qsecurex/portal/internal/domain/freerequest"
	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/pkg/errors"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/utils"
	"github.com/qsecurex/portal/internal/pkg/validator"
)

// FreeRequestHandler handles complimentary license requests
type FreeRequestHandler struct {
	service   freerequest.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewFreeRequestHandler creates a new free request handler
func NewFreeRequestHandler(service freerequest.Service, log *logger.Logger, val *validator.Validator) *FreeRequestHandler {
	return &FreeRequestHandler{service: service, logger: log, validator: val}
}

// Create files a request for a free license
// @Summary Request a free license
// @Tags Licenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FreeLicenseRequest true "Requested plan"
// @Success 201 {object} freerequest.Request
// @Failure 409 {object} utils.ErrorResponse "A request is already pending"
// @Router /licenses/free-request [post]
func (h *FreeRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req dto.FreeLicenseRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), userID, license.Plan(req.Plan))
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusCreated, "Free license request submitted", created)
}

// ListMine returns the caller's requests
// @Summary My free license requests
// @Tags Licenses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} freerequest.Request
// @Router /licenses/free-requests [get]
func (h *FreeRequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	requests, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, requests)
}

// List returns every request, optionally filtered by ?status=
// @Summary List free license requests
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Success 200 {array} freerequest.Request
// @Router /admin/licenses/free-requests [get]
func (h *FreeRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	status := freerequest.Status(r.URL.Query().Get("status"))
	switch status {
	case "", freerequest.StatusPending, freerequest.StatusApproved, freerequest.StatusRejected:
	default:
		utils.WriteError(w, errors.BadRequest("Invalid status filter"))
		return
	}

	requests, err := h.service.List(r.Context(), status)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, requests)
}

// Approve issues a license for a pending request
// @Summary Approve free license request
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} license.License
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse "Already processed"
// @Router /admin/licenses/free-requests/{id}/approve [post]
func (h *FreeRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Free license approved", l)
}

// Reject closes a pending request without issuing a license
// @Summary Reject free license request
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} freerequest.Request
// @Router /admin/licenses/free-requests/{id}/reject [post]
func (h *FreeRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Free license request rejected", req)
}
