package api

import (
	"alcyxob/flexplan/internal/config"
	"alcyxob/flexplan/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	tokenService service.TokenService,
	sessionService service.SessionService,
	rateLimit config.RateLimitConfig,
	metricsHandler http.Handler,
) {
	sessionHandler := NewSessionHandler(sessionService)
	planHandler := NewPlanHandler(sessionService)

	sessionMiddleware := SessionMiddleware(tokenService)
	limit := RateLimitMiddleware(rateLimit.RequestsPerMinute, rateLimit.Burst)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/schema", GetSchema)
		apiV1.GET("/suggestions", GetSuggestions)
		apiV1.GET("/preferences/defaults", GetDefaultPreferences)
		apiV1.POST("/sessions", limit, sessionHandler.OpenSession)
	}

	protected := apiV1.Group("/session")
	protected.Use(sessionMiddleware)
	{
		protected.GET("", sessionHandler.GetSession)
		protected.DELETE("", sessionHandler.ResetSession)

		// --- Plan Routes ---
		// Every POST here reaches the generative service, so they share the limiter.
		planGroup := protected.Group("/plan")
		{
			planGroup.GET("", planHandler.GetPlan)
			planGroup.POST("", limit, planHandler.CreatePlan)
			planGroup.POST("/import", limit, planHandler.ImportPlan)
			planGroup.POST("/revisions", limit, planHandler.RevisePlan)
		}
	}
}
