package respond

import (
	"context"

	"github.com/google/uuid"

	"github.com/avelldro/converse-backend/internal/data/repos"
	types "github.com/avelldro/converse-backend/internal/domain"
	"github.com/avelldro/converse-backend/internal/pkg/dbctx"
	"github.com/avelldro/converse-backend/internal/platform/fault"
	"github.com/avelldro/converse-backend/internal/platform/logger"
	"github.com/avelldro/converse-backend/internal/platform/openai"
	"github.com/avelldro/converse-backend/internal/services"
)

// Result reports what a processed turn produced.
type Result struct {
	ConversationID  uuid.UUID
	TurnID          uuid.UUID
	AssistantTurnID uuid.UUID
}

// Pipeline resolves a dispatched user turn, calls the completion provider
// over the conversation's recent window, and persists the assistant reply.
// Delivery is at-least-once; with dedupe off a redelivered job appends a
// second assistant turn.
type Pipeline struct {
	log           *logger.Logger
	conversations repos.ConversationRepo
	turns         repos.TurnRepo
	builder       services.ContextBuilder
	store         services.TurnStore
	ai            openai.Client
	activity      services.ActivityRecorder
	dedupe        bool
}

func NewPipeline(
	log *logger.Logger,
	conversations repos.ConversationRepo,
	turns repos.TurnRepo,
	builder services.ContextBuilder,
	store services.TurnStore,
	ai openai.Client,
	activity services.ActivityRecorder,
	dedupe bool,
) *Pipeline {
	return &Pipeline{
		log:           log.With("service", "RespondPipeline"),
		conversations: conversations,
		turns:         turns,
		builder:       builder,
		store:         store,
		ai:            ai,
		activity:      activity,
		dedupe:        dedupe,
	}
}

func (p *Pipeline) ProcessTurn(ctx context.Context, conversationID, turnID uuid.UUID) (*Result, error) {
	if conversationID == uuid.Nil || turnID == uuid.Nil {
		return nil, fault.New(fault.KindValidation, "missing conversation or turn id")
	}
	dbc := dbctx.New(ctx)
	res := &Result{ConversationID: conversationID, TurnID: turnID}

	turn, err := p.turns.GetByID(dbc, turnID)
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err)
	}
	if turn == nil || turn.ConversationID != conversationID {
		return nil, fault.New(fault.KindNotFound, "turn not found")
	}

	conv, err := p.conversations.GetByID(dbc, conversationID)
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err)
	}
	if conv == nil || conv.UserID != turn.UserID {
		return nil, fault.New(fault.KindNotFound, "conversation not found")
	}

	if p.dedupe {
		existing, err := p.turns.FirstAssistantAfterSeq(dbc, conv.ID, turn.Seq)
		if err != nil {
			return nil, fault.Wrap(fault.KindStorage, err)
		}
		if existing != nil {
			p.log.Info("turn already answered; skipping",
				"conversation_id", conv.ID, "turn_id", turn.ID, "assistant_turn_id", existing.ID)
			res.AssistantTurnID = existing.ID
			return res, nil
		}
	}

	window, err := p.builder.Build(dbc, conv.ID)
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err)
	}

	reply, err := p.ai.Complete(ctx, window)
	if err != nil {
		// Nothing was persisted for this attempt; a retry starts clean.
		return nil, fault.Wrap(fault.KindUpstream, err)
	}

	assistant, err := p.store.Append(dbc, &types.Turn{
		ConversationID: conv.ID,
		UserID:         conv.UserID,
		Role:           types.RoleAssistant,
		Content:        reply,
		Model:          p.ai.Model(),
	})
	if err != nil {
		return nil, err
	}
	res.AssistantTurnID = assistant.ID

	p.activity.Record(ctx, conv.UserID, "assistant_replied", map[string]any{
		"conversation_id":   conv.ID.String(),
		"turn_id":           turn.ID.String(),
		"assistant_turn_id": assistant.ID.String(),
	})
	return res, nil
}
