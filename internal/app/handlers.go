package app

import (
	"github.com/avelldro/converse-backend/internal/http/handlers"
	"github.com/avelldro/converse-backend/internal/platform/logger"
)

type Handlers struct {
	Chat *handlers.ChatHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Chat: handlers.NewChatHandler(services.Chat),
	}
}
