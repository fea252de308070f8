package services

import (
	"github.com/google/uuid"

	"github.com/avelldro/converse-backend/internal/data/repos"
	"github.com/avelldro/converse-backend/internal/pkg/dbctx"
	"github.com/avelldro/converse-backend/internal/platform/logger"
	"github.com/avelldro/converse-backend/internal/platform/openai"
)

const defaultContextWindow = 10

// ContextBuilder assembles the prompt window for a conversation: the
// newest window turns in ascending order, mapped to provider messages.
type ContextBuilder interface {
	Build(dbc dbctx.Context, conversationID uuid.UUID) ([]openai.Message, error)
}

type contextBuilder struct {
	log    *logger.Logger
	turns  repos.TurnRepo
	window int
}

func NewContextBuilder(log *logger.Logger, turns repos.TurnRepo, window int) ContextBuilder {
	if window <= 0 {
		window = defaultContextWindow
	}
	return &contextBuilder{
		log:    log.With("service", "ContextBuilder"),
		turns:  turns,
		window: window,
	}
}

func (b *contextBuilder) Build(dbc dbctx.Context, conversationID uuid.UUID) ([]openai.Message, error) {
	rows, err := b.turns.ListRecent(dbc, conversationID, b.window)
	if err != nil {
		return nil, err
	}
	out := make([]openai.Message, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		out = append(out, openai.Message{Role: row.Role, Content: row.Content})
	}
	return out, nil
}
