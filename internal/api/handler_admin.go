package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/mw"
	"parking-reservation-backend/internal/store"
)

type lotRequest struct {
	LocationName string  `json:"location_name" binding:"required"`
	Address      string  `json:"address"`
	Pincode      string  `json:"pincode"`
	PricePerHour float64 `json:"price_per_hour"`
	TotalSlots   int     `json:"total_slots" binding:"required,min=1"`
}

// CreateLot handles POST /api/admin/lots.
func (h *Handler) CreateLot(c *gin.Context) {
	var req lotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lot, err := h.store.CreateLot(c.Request.Context(), mw.UserID(c), store.LotUpdate{
		LocationName: req.LocationName,
		Address:      req.Address,
		Pincode:      req.Pincode,
		PricePerHour: req.PricePerHour,
		TotalSlots:   req.TotalSlots,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

// UpdateLot handles PUT /api/admin/lots/:lot_id including resizes.
func (h *Handler) UpdateLot(c *gin.Context) {
	lotID, ok := pathID(c, "lot_id")
	if !ok {
		return
	}
	var req lotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lot, err := h.store.UpdateLot(c.Request.Context(), lotID, store.LotUpdate{
		LocationName: req.LocationName,
		Address:      req.Address,
		Pincode:      req.Pincode,
		PricePerHour: req.PricePerHour,
		TotalSlots:   req.TotalSlots,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// DeleteLot handles DELETE /api/admin/lots/:lot_id.
func (h *Handler) DeleteLot(c *gin.Context) {
	lotID, ok := pathID(c, "lot_id")
	if !ok {
		return
	}
	if err := h.store.DeleteLot(c.Request.Context(), lotID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteSpot handles DELETE /api/admin/spots/:spot_id.
func (h *Handler) DeleteSpot(c *gin.Context) {
	spotID, ok := pathID(c, "spot_id")
	if !ok {
		return
	}
	if err := h.store.DeleteSpot(c.Request.Context(), spotID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type maintenanceRequest struct {
	Reason string     `json:"reason"`
	EndsAt *time.Time `json:"ends_at"`
}

// StartMaintenance handles POST /api/admin/spots/:spot_id/maintenance.
func (h *Handler) StartMaintenance(c *gin.Context) {
	spotID, ok := pathID(c, "spot_id")
	if !ok {
		return
	}
	var req maintenanceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	window, err := h.store.StartMaintenance(c.Request.Context(), spotID, mw.UserID(c), req.Reason, req.EndsAt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, window)
}

// StopMaintenance handles DELETE /api/admin/spots/:spot_id/maintenance.
func (h *Handler) StopMaintenance(c *gin.Context) {
	spotID, ok := pathID(c, "spot_id")
	if !ok {
		return
	}
	if err := h.store.StopMaintenance(c.Request.Context(), spotID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
