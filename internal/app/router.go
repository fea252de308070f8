package app

import (
	"github.com/gin-gonic/gin"

	"github.com/avelldro/converse-backend/internal/server"
)

func wireRouter(handlers Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ChatHandler:    handlers.Chat,
		AuthMiddleware: middleware.Auth,
	})
}
