package routes

import (
	"time"

	"bikeserve/handlers"
	"bikeserve/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterSessionRoutes registers session issue, intent and logout endpoints.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/session")
	{
		api.POST("", hb.Session.CreateSession)

		// Everything else acts on the caller's session.
		api.Use(middleware.SessionMiddleware(hb.Auth))
		api.GET("", hb.Session.GetSession)
		api.DELETE("", hb.Session.Logout)
		api.PUT("/intent", hb.Session.SaveIntent)
		api.GET("/intent", hb.Session.GetIntent)
		api.DELETE("/intent", hb.Session.ClearIntent)
		api.PUT("/fcm-token", hb.Session.UpdateFCMToken)
	}
}

// RegisterAuthRoutes registers the OTP login endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.Use(middleware.SessionMiddleware(hb.Auth))
		api.POST("/otp/send", hb.Login.SendOTP)
		api.POST("/otp/verify", hb.Login.VerifyOTP)
	}
}

// RegisterLocationRoutes registers geolocation and manual city selection.
func RegisterLocationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/location")
	{
		api.Use(middleware.SessionMiddleware(hb.Auth))
		api.POST("/resolve", hb.Location.ResolveLocation)
		api.PUT("/city", hb.Location.SelectCity)
	}
}

// RegisterCatalogRoutes registers the read-only marketplace listings.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.Use(middleware.SessionMiddleware(hb.Auth))
		api.GET("/catalog/cities", hb.Catalog.ListCities)
		api.GET("/catalog/brands", hb.Catalog.ListBrands)
		api.GET("/catalog/brands/:id/models", hb.Catalog.ListModels)
		api.GET("/landing", hb.Catalog.Landing)
		api.GET("/providers/:flow/search", hb.Catalog.SearchProviders)
	}
}

// RegisterProfileRoutes registers the subscriber's vehicles and addresses. Login required.
func RegisterProfileRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/profile")
	{
		api.Use(middleware.SessionMiddleware(hb.Auth), middleware.RequireLogin())
		api.GET("/vehicles", hb.Profile.ListVehicles)
		api.POST("/vehicles", hb.Profile.AddVehicle)
		api.POST("/vehicles/:id/photo", hb.Profile.UploadVehiclePhoto)
		api.DELETE("/vehicles/:id/photo", hb.Profile.DeleteVehiclePhoto)
		api.GET("/addresses", hb.Profile.ListAddresses)
		api.POST("/addresses", hb.Profile.AddAddress)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterSessionRoutes(r, hb)
	RegisterAuthRoutes(r, hb)
	RegisterLocationRoutes(r, hb)
	RegisterCatalogRoutes(r, hb)
	RegisterProfileRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
}
