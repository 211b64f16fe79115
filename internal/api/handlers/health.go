package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/utils"
)

// Optional backends. The API keeps serving without them, but downloads or
// checkout answer NOT_CONFIGURED.
type Backends struct {
	Storage  bool
	Payments bool
}

// ReadinessResponse is the /readyz payload. Status is "degraded" when an
// optional backend is missing.
type ReadinessResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Storage  string `json:"storage"`
	Payments string `json:"payments"`
}

type HealthHandler struct {
	db       *sql.DB
	backends Backends
	logger   *logger.Logger
}

func NewHealthHandler(db *sql.DB, backends Backends, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:       db,
		backends: backends,
		logger:   log,
	}
}

// Healthz reports liveness
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz pings the database and reports which optional backends are wired
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /readyz [get]
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.ErrorWithErr(err, "Database ping failed")
		utils.WriteErrorMessage(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Database connection failed")
		return
	}

	resp := ReadinessResponse{
		Status:   "ready",
		Database: "connected",
		Storage:  configuredState(h.backends.Storage),
		Payments: configuredState(h.backends.Payments),
	}
	if !h.backends.Storage || !h.backends.Payments {
		resp.Status = "degraded"
	}
	utils.WriteSuccess(w, http.StatusOK, resp)
}

func configuredState(ok bool) string {
	if ok {
		return "configured"
	}
	return "not_configured"
}
