package handler

import (
	"github.com/gin-gonic/gin"

	dashboardapp "github.com/marketsync/backend/internal/application/dashboard"
)

// DashboardHandler handles dashboard API endpoints
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboardapp.Service
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *dashboardapp.Service) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Summary godoc
// @ID           getDashboardSummary
// @Summary      Get dashboard summary
// @Description  Retrieve the combined inventory, order, connection and recent job summary. Results are cached briefly per org.
// @Tags         dashboard
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Success      200 {object} APIResponse[dashboardapp.Summary]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	summary, err := h.dashboardService.Summarize(c.Request.Context(), orgID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// Refresh godoc
// @ID           refreshDashboardSummary
// @Summary      Refresh dashboard summary
// @Description  Drop the cached summary for the org so the next read recomputes it
// @Tags         dashboard
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /dashboard/summary/refresh [post]
func (h *DashboardHandler) Refresh(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	h.dashboardService.Invalidate(c.Request.Context(), orgID)
	h.NoContent(c)
}
