package app

import (
	"gorm.io/gorm"

	"github.com/avelldro/converse-backend/internal/data/repos"
	"github.com/avelldro/converse-backend/internal/platform/logger"
)

type Repos struct {
	Conversation repos.ConversationRepo
	Turn         repos.TurnRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Conversation: repos.NewConversationRepo(db, log),
		Turn:         repos.NewTurnRepo(db, log),
	}
}
