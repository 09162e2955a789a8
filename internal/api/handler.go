// Package api exposes the HTTP surface over the allocation engine.
// Handlers are thin: they bind input, call one store operation and map
// engine errors to status codes.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      *store.Store
	jwtSecret  string
	accessTTL  time.Duration
	bcryptCost int
	webpush    *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s *store.Store, jwtSecret string, accessTTL time.Duration, bcryptCost int, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:      s,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		bcryptCost: bcryptCost,
		webpush:    webpushOptions,
	}
}

// writeError maps engine errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrSpotConflict),
		errors.Is(err, store.ErrHoldExpired),
		errors.Is(err, store.ErrAlreadyReleased):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
