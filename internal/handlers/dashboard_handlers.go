package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"licensewatch/internal/common"
	"licensewatch/internal/services"
)

type DashboardHandlers struct {
	dashboardService services.DashboardService
}

func NewDashboardHandlers(dashboardService services.DashboardService) *DashboardHandlers {
	return &DashboardHandlers{dashboardService: dashboardService}
}

// GetSummary serves the dashboard summary; ?refresh=true bypasses the cache
func (h *DashboardHandlers) GetSummary(c echo.Context) error {
	ctx := c.Request().Context()

	summaryFn := h.dashboardService.Summary
	if c.QueryParam("refresh") == "true" {
		summaryFn = h.dashboardService.Refresh
	}

	summary, err := summaryFn(ctx)
	if err != nil {
		return common.SendServerError(c, "failed to build dashboard summary")
	}
	return c.JSON(http.StatusOK, summary)
}
