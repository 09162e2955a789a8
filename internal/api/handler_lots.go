package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/model"
	"parking-reservation-backend/internal/mw"
	"parking-reservation-backend/internal/store"
)

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// ListLots handles GET /api/lots.
func (h *Handler) ListLots(c *gin.Context) {
	lots, err := h.store.ListLots(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

// GetLot handles GET /api/lots/:lot_id.
func (h *Handler) GetLot(c *gin.Context) {
	lotID, ok := pathID(c, "lot_id")
	if !ok {
		return
	}
	lot, err := h.store.GetLot(c.Request.Context(), lotID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

type holdRequest struct {
	SpotID int64 `json:"spot_id"`
}

type holdResponse struct {
	HoldID    int64     `json:"hold_id"`
	SpotID    int64     `json:"spot_id"`
	SpotLabel string    `json:"spot_label"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AcquireHold handles POST /api/lots/:lot_id/hold. When no spot is named
// the lowest-numbered bookable spot is claimed.
func (h *Handler) AcquireHold(c *gin.Context) {
	lotID, ok := pathID(c, "lot_id")
	if !ok {
		return
	}
	userID := mw.UserID(c)

	var req holdRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	spotID := req.SpotID
	if spotID == 0 {
		spot, err := h.store.GetBookableSpot(ctx, lotID, userID)
		if err != nil {
			writeError(c, err)
			return
		}
		if spot == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "no bookable spot is available"})
			return
		}
		spotID = spot.ID
	}

	hold, err := h.store.AcquireHold(ctx, userID, lotID, spotID, store.DefaultHoldDuration)
	if err != nil {
		writeError(c, err)
		return
	}

	var spot model.ParkingSpot
	label := ""
	if err := h.store.DB().WithContext(ctx).First(&spot, hold.SpotID).Error; err == nil {
		label = spot.Label()
	}
	c.JSON(http.StatusOK, holdResponse{
		HoldID:    hold.ID,
		SpotID:    hold.SpotID,
		SpotLabel: label,
		ExpiresAt: hold.ExpiresAt,
	})
}

type bookRequest struct {
	VehicleNo string `json:"vehicle_no"`
}

// ConfirmBooking handles POST /api/lots/:lot_id/book. Requires an
// effective hold; an omitted plate falls back to the caller's default
// vehicle.
func (h *Handler) ConfirmBooking(c *gin.Context) {
	lotID, ok := pathID(c, "lot_id")
	if !ok {
		return
	}
	userID := mw.UserID(c)

	var req bookRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	if req.VehicleNo == "" {
		vehicle, err := h.store.DefaultVehicle(ctx, userID)
		if err != nil {
			writeError(c, err)
			return
		}
		if vehicle != nil {
			req.VehicleNo = vehicle.PlateNumber
		}
	}

	booking, err := h.store.ConfirmBooking(ctx, userID, lotID, req.VehicleNo)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

type scheduleRequest struct {
	VehicleNo      string    `json:"vehicle_no"`
	VehicleID      *int64    `json:"vehicle_id"`
	RequestedStart time.Time `json:"requested_start" binding:"required"`
	DurationHours  int       `json:"duration_hours"`
}

// CreateScheduledBooking handles POST /api/lots/:lot_id/schedule.
func (h *Handler) CreateScheduledBooking(c *gin.Context) {
	lotID, ok := pathID(c, "lot_id")
	if !ok {
		return
	}
	userID := mw.UserID(c)

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if req.VehicleNo == "" {
		vehicle, err := h.store.DefaultVehicle(ctx, userID)
		if err != nil {
			writeError(c, err)
			return
		}
		if vehicle != nil {
			req.VehicleNo = vehicle.PlateNumber
			req.VehicleID = &vehicle.ID
		}
	}

	scheduled, err := h.store.CreateScheduledBooking(ctx, userID, lotID, req.VehicleNo, req.VehicleID, req.RequestedStart, req.DurationHours)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, scheduled)
}

type waitlistRequest struct {
	VehicleNo string `json:"vehicle_no"`
	VehicleID *int64 `json:"vehicle_id"`
}

// JoinWaitlist handles POST /api/lots/:lot_id/waitlist. Rejoining while
// already waiting returns the existing entry.
func (h *Handler) JoinWaitlist(c *gin.Context) {
	lotID, ok := pathID(c, "lot_id")
	if !ok {
		return
	}
	userID := mw.UserID(c)

	var req waitlistRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	if req.VehicleNo == "" {
		vehicle, err := h.store.DefaultVehicle(ctx, userID)
		if err != nil {
			writeError(c, err)
			return
		}
		if vehicle != nil {
			req.VehicleNo = vehicle.PlateNumber
			req.VehicleID = &vehicle.ID
		}
	}

	entry, created, err := h.store.JoinWaitlist(ctx, userID, lotID, req.VehicleNo, req.VehicleID)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, entry)
}

// CancelWaitlist handles DELETE /api/waitlist/:entry_id.
func (h *Handler) CancelWaitlist(c *gin.Context) {
	entryID, ok := pathID(c, "entry_id")
	if !ok {
		return
	}
	if err := h.store.CancelWaitlist(c.Request.Context(), entryID, mw.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
