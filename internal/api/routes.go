package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/api/handlers"
	"github.com/playmatatu/billiards/internal/auth"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/metrics"
	"github.com/playmatatu/billiards/internal/middleware"
	"github.com/playmatatu/billiards/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, gm *game.GameManager, hub *ws.Hub, signer *auth.SeatSigner, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(gm))
		v1.GET("/config", handlers.GetConfig(cfg))

		tables := v1.Group("/tables")
		{
			tables.POST("", handlers.CreateTable(gm, signer))
			tables.GET("/:id", handlers.GetTable(gm))
			tables.GET("/:id/results", handlers.GetTableResults(gm))
			tables.POST("/:id/seats", handlers.ClaimSeat(gm, signer))
			tables.GET("/:id/ws", middleware.WebSocketOriginCheck(cfg), handlers.HandleTableWebSocket(hub))
		}
	}
}
