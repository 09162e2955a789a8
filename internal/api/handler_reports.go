package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/mw"
)

// OccupancyReport handles GET /api/admin/reports/occupancy.
func (h *Handler) OccupancyReport(c *gin.Context) {
	rows, err := h.store.LotOccupancy(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// RevenueReport handles GET /api/admin/reports/revenue.
func (h *Handler) RevenueReport(c *gin.Context) {
	rows, err := h.store.LotRevenue(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// UsageReport handles GET /api/reports/usage for the caller.
func (h *Handler) UsageReport(c *gin.Context) {
	row, err := h.store.UserUsage(c.Request.Context(), mw.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
