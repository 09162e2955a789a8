package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/mw"
)

// ListBookings handles GET /api/bookings.
func (h *Handler) ListBookings(c *gin.Context) {
	bookings, err := h.store.ListBookings(c.Request.Context(), mw.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// ReleaseBooking handles POST /api/bookings/:booking_id/release.
func (h *Handler) ReleaseBooking(c *gin.Context) {
	bookingID, ok := pathID(c, "booking_id")
	if !ok {
		return
	}
	booking, invoice, err := h.store.ReleaseBooking(c.Request.Context(), bookingID, mw.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "invoice": invoice})
}

// ListInvoices handles GET /api/invoices.
func (h *Handler) ListInvoices(c *gin.Context) {
	invoices, err := h.store.ListInvoices(c.Request.Context(), mw.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// ListNotifications handles GET /api/notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	logs, err := h.store.ListNotifications(c.Request.Context(), mw.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
