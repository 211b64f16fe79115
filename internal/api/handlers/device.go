package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qsecurex/portal/internal/api/dto"
	"github.com/qsecurex/portal/internal/domain/device"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/utils"
	"github.com/qsecurex/portal/internal/pkg/validator"
)

// DeviceHandler handles device registration
type DeviceHandler struct {
	service   device.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(service device.Service, log *logger.Logger, val *validator.Validator) *DeviceHandler {
	return &DeviceHandler{service: service, logger: log, validator: val}
}

// Register binds a device to one of the caller's active licenses
// @Summary Register device
// @Tags Devices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterDeviceRequest true "Device"
// @Success 201 {object} device.Device
// @Failure 403 {object} utils.ErrorResponse "No license or device limit reached"
// @Failure 409 {object} utils.ErrorResponse "Device already registered"
// @Router /devices [post]
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req dto.RegisterDeviceRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	var name *string
	if req.DeviceName != "" {
		name = &req.DeviceName
	}

	d, err := h.service.Register(r.Context(), userID, device.Registration{
		DeviceID:   req.DeviceID,
		DeviceName: name,
		DeviceType: device.Type(req.DeviceType),
		LicenseID:  req.LicenseID,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, d)
}

// List returns the caller's devices
// @Summary My devices
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Success 200 {array} device.Device
// @Router /devices [get]
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	devices, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, devices)
}

// ListAll returns every registered device
// @Summary List devices
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} device.Device
// @Router /admin/devices [get]
func (h *DeviceHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	devices, err := h.service.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, devices)
}

// Remove frees a device slot
// @Summary Remove device
// @Tags Devices
// @Security BearerAuth
// @Param id path string true "Device ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /devices/{id} [delete]
func (h *DeviceHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := h.service.Remove(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
