package apigateway

import (
	"ai-content-replacer-pro/backend/internal/auth"
	"ai-content-replacer-pro/backend/internal/configmanagement"
	"ai-content-replacer-pro/backend/internal/jobmanagement"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes the main Gin router for the API gateway.
// It includes public routes and authenticated routes.
func SetupRouter() *gin.Engine {
	router := gin.Default()

	// Public routes (login/logout only)
	authRoutes := router.Group("/auth")
	{
		// auth.LoadAdminCredentials() must have been called in main.go
		// before the router starts serving.
		authRoutes.POST("/login", auth.LoginHandler)
		authRoutes.POST("/logout", auth.LogoutHandler)
	}

	// Authenticated routes
	// All routes in this group go through the AuthMiddleware.
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(auth.AuthMiddleware())
	{
		// Provider catalog and per-user provider configuration
		providerRoutes := adminRoutes.Group("/providers")
		{
			providerRoutes.GET("/catalog", configmanagement.ListCatalogHandler)
			providerRoutes.GET("", configmanagement.ListProviderConfigsHandler)
			providerRoutes.POST("", configmanagement.SaveProviderConfigHandler)
			providerRoutes.DELETE("/:id", configmanagement.DeleteProviderConfigHandler)
			providerRoutes.POST("/test-connection", configmanagement.TestConnectionHandler)
			providerRoutes.GET("/stats", jobmanagement.GetProviderStatsHandler)
		}

		// Business profile feeding the prompt context block
		profileRoutes := adminRoutes.Group("/business-profile")
		{
			profileRoutes.GET("", configmanagement.GetBusinessProfileHandler)
			profileRoutes.POST("", configmanagement.SaveBusinessProfileHandler)
		}

		// Content generation and batch processing
		contentRoutes := adminRoutes.Group("/content")
		{
			contentRoutes.POST("/generate", jobmanagement.GenerateHandler)
			contentRoutes.POST("/process-batch", jobmanagement.ProcessBatchHandler)
		}

		// Ledger-backed reporting
		usageRoutes := adminRoutes.Group("/usage")
		{
			usageRoutes.GET("/history", jobmanagement.GetUsageHistoryHandler)
			usageRoutes.GET("/analytics", jobmanagement.GetAnalyticsHandler)
			usageRoutes.POST("/reset-daily", jobmanagement.ResetDailyUsageHandler)
			usageRoutes.POST("/cleanup", jobmanagement.CleanupHistoryHandler)
		}
	}

	return router
}
