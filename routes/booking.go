package routes

import (
	"bikeserve/handlers"
	"bikeserve/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers the booking wizard. :flow is garage or washing.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	booking := r.Group("/api/booking/:flow/drafts")
	{
		booking.Use(middleware.SessionMiddleware(hb.Auth))
		booking.POST("", hb.Booking.StartDraft)
		booking.GET("/:id", hb.Booking.GetDraft)
		booking.DELETE("/:id", hb.Booking.CancelDraft)

		booking.PUT("/:id/vehicle", hb.Booking.SelectVehicle)
		booking.PUT("/:id/services/:itemId", hb.Booking.ToggleService)
		booking.PUT("/:id/addons/:itemId", hb.Booking.ToggleAddOn)
		booking.PUT("/:id/slot", hb.Booking.SelectSlot)
		booking.PUT("/:id/address", hb.Booking.SelectAddress)
		booking.PUT("/:id/suggestion", hb.Booking.UpdateSuggestion)
		booking.PUT("/:id/estimate", hb.Booking.UpdateEstimate)

		booking.POST("/:id/advance", hb.Booking.Advance)
		booking.POST("/:id/jump/:step", hb.Booking.JumpBack)
		booking.POST("/:id/confirm", hb.Booking.Confirm)
		booking.DELETE("/:id/errors", hb.Booking.DismissErrors)
	}
}
