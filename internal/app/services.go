package app

import (
	temporalsdkclient "go.temporal.io/sdk/client"
	"gorm.io/gorm"

	"github.com/avelldro/converse-backend/internal/jobs/respond"
	"github.com/avelldro/converse-backend/internal/platform/logger"
	"github.com/avelldro/converse-backend/internal/platform/openai"
	"github.com/avelldro/converse-backend/internal/services"
	"github.com/avelldro/converse-backend/internal/temporalx"
)

type Services struct {
	TurnStore      services.TurnStore
	ContextBuilder services.ContextBuilder
	Activity       services.ActivityRecorder
	Dispatcher     services.TurnDispatcher
	Chat           services.ChatService

	OpenAI  openai.Client
	Respond *respond.Pipeline

	Temporal temporalsdkclient.Client
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	tc, err := temporalx.NewClient(log)
	if err != nil {
		return Services{}, err
	}
	tcfg := temporalx.LoadConfig()

	store := services.NewTurnStore(db, reposet.Conversation, reposet.Turn, log)
	builder := services.NewContextBuilder(log, reposet.Turn, cfg.ContextWindow)
	activity := services.NewActivityService(log)
	dispatcher := services.NewTurnDispatcher(log, tc, tcfg.TaskQueue)
	ai := openai.NewClient(log)

	chat := services.NewChatService(log, reposet.Conversation, reposet.Turn, store, dispatcher, activity, cfg.MaxContentChars)

	pipeline := respond.NewPipeline(log, reposet.Conversation, reposet.Turn, builder, store, ai, activity, cfg.RespondDedupe)

	return Services{
		TurnStore:      store,
		ContextBuilder: builder,
		Activity:       activity,
		Dispatcher:     dispatcher,
		Chat:           chat,
		OpenAI:         ai,
		Respond:        pipeline,
		Temporal:       tc,
	}, nil
}
