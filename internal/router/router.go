package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pagewatch-dev/pagewatch/internal/config"
	"github.com/pagewatch-dev/pagewatch/internal/handlers"
	"github.com/pagewatch-dev/pagewatch/internal/middleware"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(cfg.JWTSecret), handlers.WebSocket)

		// Provider callbacks
		api.POST("/webhooks/sms-status", handlers.SMSStatusWebhook)

		// Scheduler and operator surface
		internal := api.Group("/internal", middleware.InternalAuth(cfg.InternalToken))
		{
			internal.POST("/checks", handlers.TriggerCheck)
			internal.GET("/costs", handlers.GetCostStats)
		}

		// User-facing surface
		authed := api.Group("", middleware.AuthMiddleware(cfg.JWTSecret))
		{
			authed.POST("/monitors", handlers.CreateMonitor)
			authed.GET("/monitors", handlers.GetMonitors)
			authed.PUT("/monitors/:monitor_id", handlers.UpdateMonitor)
			authed.DELETE("/monitors/:monitor_id", handlers.DeleteMonitor)
			authed.GET("/monitors/:monitor_id/checks", handlers.GetMonitorChecks)

			authed.GET("/notifications", handlers.GetNotifications)
			authed.GET("/usage", handlers.GetUsage)
		}
	}

	return r
}
