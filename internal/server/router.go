package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/avelldro/converse-backend/internal/http/handlers"
	"github.com/avelldro/converse-backend/internal/http/middleware"
)

type RouterConfig struct {
	ChatHandler    *handlers.ChatHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	chat := api.Group("/chat")
	chat.POST("/conversations", cfg.ChatHandler.CreateConversation)
	chat.GET("/conversations", cfg.ChatHandler.ListConversations)
	chat.GET("/conversations/:id", cfg.ChatHandler.GetConversation)
	chat.GET("/conversations/:id/messages", cfg.ChatHandler.ListMessages)
	chat.DELETE("/conversations/:id", cfg.ChatHandler.DeleteConversation)
	chat.POST("/messages", cfg.ChatHandler.SendMessage)

	return router
}
