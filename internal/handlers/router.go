package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coinflip-ladder-backend/internal/middleware"
	"coinflip-ladder-backend/internal/services"
)

type RouterDeps struct {
	Version     string
	GameEngine  *services.GameEngine
	RateLimiter services.RateLimiter
	Feed        *WebSocketHandler
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.CORS())

	gameHandler := NewGameHandler(deps.GameEngine)
	healthHandler := NewHealthHandler(deps.Version, deps.GameEngine.ActiveSessions)

	router.GET("/health", healthHandler.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.Any("/play", middleware.RateLimitMiddleware(deps.RateLimiter), gameHandler.Play)
		api.GET("/fairness", gameHandler.GetVerificationData)
		api.POST("/verify", gameHandler.VerifyGame)

		if deps.Feed != nil {
			api.GET("/feed", deps.Feed.HandleWebSocket)
		}
	}

	return router
}
