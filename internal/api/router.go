package api

import (
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"parking-reservation-backend/config"
	"parking-reservation-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := cfg.Server.CacheTTL()
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	authed := mw.Auth(cfg.Auth.JWTSecret)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		user := api.Group("", authed)
		{
			user.GET("/lots", h.ListLots)
			user.GET("/lots/:lot_id", h.GetLot)
			user.POST("/lots/:lot_id/hold", h.AcquireHold)
			user.POST("/lots/:lot_id/book", h.ConfirmBooking)
			user.POST("/lots/:lot_id/schedule", h.CreateScheduledBooking)
			user.POST("/lots/:lot_id/waitlist", h.JoinWaitlist)
			user.DELETE("/waitlist/:entry_id", h.CancelWaitlist)

			user.GET("/bookings", h.ListBookings)
			user.POST("/bookings/:booking_id/release", h.ReleaseBooking)

			user.GET("/vehicles", h.ListVehicles)
			user.POST("/vehicles", h.AddVehicle)
			user.POST("/vehicles/:vehicle_id/default", h.SetDefaultVehicle)
			user.DELETE("/vehicles/:vehicle_id", h.RemoveVehicle)

			user.GET("/invoices", h.ListInvoices)
			user.GET("/notifications", h.ListNotifications)

			user.PUT("/subscriptions", h.PutSubscription)
			user.DELETE("/subscriptions", h.DeleteSubscription)

			user.GET("/reports/usage", caching, h.UsageReport)
		}

		admin := api.Group("/admin", authed, mw.RequireAdmin())
		{
			admin.POST("/lots", h.CreateLot)
			admin.PUT("/lots/:lot_id", h.UpdateLot)
			admin.DELETE("/lots/:lot_id", h.DeleteLot)
			admin.DELETE("/spots/:spot_id", h.DeleteSpot)
			admin.POST("/spots/:spot_id/maintenance", h.StartMaintenance)
			admin.DELETE("/spots/:spot_id/maintenance", h.StopMaintenance)
			admin.GET("/reports/occupancy", caching, h.OccupancyReport)
			admin.GET("/reports/revenue", caching, h.RevenueReport)
		}
	}

	return r
}
