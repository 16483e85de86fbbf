// File: routes/routes.go
package routes

import (
	"net/http"
	"time"

	"concierge/handlers"
	"concierge/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle carries the wired handlers into route registration.
type HandlerBundle struct {
	Booking *handlers.BookingHandler
	Master  *handlers.MasterHandler
	Device  *handlers.DeviceHandler
}

// RegisterBookingRoutes sets up the endpoints for the booking engine.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api")
	{
		api.POST("/bookings", hb.Booking.RequestBooking)
		api.POST("/bookings/:id/confirm", hb.Booking.ConfirmBooking)
		api.POST("/bookings/:id/decline", hb.Booking.DeclineBooking)
		api.GET("/entities/:id/availability", hb.Booking.ListAvailable)
		api.GET("/clients/:id/bookings", hb.Booking.ListClientBookings)
		api.POST("/bookings/:id/cancel", hb.Booking.CancelDeviceBooking)
	}
}

// RegisterMasterRoutes registers practitioner profile endpoints.
func RegisterMasterRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/masters")
	{
		api.POST("/register", hb.Master.Register)
		api.GET("", hb.Master.ListActive)
		api.GET("/:id", hb.Master.GetProfile)
		api.PATCH("/:id/description", hb.Master.UpdateDescription)
		api.POST("/:id/slots", hb.Master.AddSlots)
		api.POST("/:id/slots/cancel", hb.Booking.CancelSlot)
		api.DELETE("/:id", hb.Master.Deactivate)
	}
}

// RegisterDeviceRoutes registers equipment and notification endpoints.
func RegisterDeviceRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api")
	{
		api.POST("/devices", hb.Device.RegisterDevice)
		api.GET("/devices", hb.Device.ListDevices)
		api.GET("/devices/:id", hb.Device.GetDevice)
		api.GET("/locations", hb.Device.ListLocations)
		api.POST("/push-tokens", hb.Device.RegisterPushToken)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, hb)
	RegisterMasterRoutes(r, hb)
	RegisterDeviceRoutes(r, hb)
}
