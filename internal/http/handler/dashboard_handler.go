package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/facturaec/proforma-api/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// GetStats godoc
// @Summary Get dashboard statistics
// @Description Returns the caller's active client count, total proforma count and the number of proformas dated in the current month
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardStatsDTO
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard [get]
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetStats(r.Context())
	if err != nil {
		h.logger.Error("failed to get dashboard stats", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get dashboard stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
