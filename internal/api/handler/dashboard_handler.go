package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/igloolab/pharmacy-inventory/internal/core/ports"
)

type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats handles GET /dashboard/stats.
//
// @Summary      Inventory statistics
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  statsResponse
// @Failure      500  {object}  errorResponse
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.service.GetStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsResponse{Stats: stats})
}

// ExpiryStatus handles GET /dashboard/expiry-status.
//
// @Summary      Products per expiry bucket
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  expiryStatusResponse
// @Failure      500  {object}  errorResponse
// @Router       /dashboard/expiry-status [get]
func (h *DashboardHandler) ExpiryStatus(c echo.Context) error {
	status, err := h.service.GetExpiryStatus(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, expiryStatusResponse{ExpiryStatus: status})
}
