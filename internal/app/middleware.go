package app

import (
	"github.com/avelldro/converse-backend/internal/http/middleware"
	"github.com/avelldro/converse-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}
