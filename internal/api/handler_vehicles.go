package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/mw"
)

type addVehicleRequest struct {
	PlateNumber string `json:"plate_number" binding:"required"`
	Label       string `json:"label"`
}

// AddVehicle handles POST /api/vehicles. Re-adding an existing active
// plate returns it unchanged.
func (h *Handler) AddVehicle(c *gin.Context) {
	var req addVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vehicle, created, err := h.store.AddVehicle(c.Request.Context(), mw.UserID(c), req.PlateNumber, req.Label)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, vehicle)
}

// ListVehicles handles GET /api/vehicles.
func (h *Handler) ListVehicles(c *gin.Context) {
	vehicles, err := h.store.ListVehicles(c.Request.Context(), mw.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// SetDefaultVehicle handles POST /api/vehicles/:vehicle_id/default.
func (h *Handler) SetDefaultVehicle(c *gin.Context) {
	vehicleID, ok := pathID(c, "vehicle_id")
	if !ok {
		return
	}
	if err := h.store.SetDefaultVehicle(c.Request.Context(), mw.UserID(c), vehicleID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveVehicle handles DELETE /api/vehicles/:vehicle_id.
func (h *Handler) RemoveVehicle(c *gin.Context) {
	vehicleID, ok := pathID(c, "vehicle_id")
	if !ok {
		return
	}
	if err := h.store.RemoveVehicle(c.Request.Context(), mw.UserID(c), vehicleID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
