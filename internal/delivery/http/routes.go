package http

import (
	"github.com/gin-gonic/gin"
	"github.com/stocklens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(SessionMiddleware())
	{
		v1.GET("/stock/:retailer/:sku", handler.LookupStock)

		searches := v1.Group("/searches")
		{
			searches.POST("/:retailer", handler.CreateSearch)
			searches.GET("/:retailer/recent", handler.RecentSearches)
		}

		v1.GET("/session/zipcode", handler.SessionZipcode)
		v1.DELETE("/session/zipcode", handler.ForgetSessionZipcode)
	}

	return router
}
