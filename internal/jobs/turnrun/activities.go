package turnrun

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"

	"github.com/avelldro/converse-backend/internal/jobs/respond"
	"github.com/avelldro/converse-backend/internal/platform/fault"
	"github.com/avelldro/converse-backend/internal/platform/logger"
)

// TurnProcessor runs one respond attempt for a stored user turn.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, conversationID, turnID uuid.UUID) (*respond.Result, error)
}

type Activities struct {
	Log       *logger.Logger
	Processor TurnProcessor
}

func (a *Activities) Process(ctx context.Context, in Input) (Result, error) {
	if a == nil || a.Processor == nil {
		return Result{}, temporal.NewNonRetryableApplicationError(
			"turnrun: activity not configured", string(fault.KindConfiguration), nil)
	}

	conversationID, err := uuid.Parse(in.ConversationID)
	if err != nil || conversationID == uuid.Nil {
		return Result{}, temporal.NewNonRetryableApplicationError(
			"turnrun: invalid conversation_id", string(fault.KindValidation), err)
	}
	turnID, err := uuid.Parse(in.TurnID)
	if err != nil || turnID == uuid.Nil {
		return Result{}, temporal.NewNonRetryableApplicationError(
			"turnrun: invalid turn_id", string(fault.KindValidation), err)
	}

	res, err := a.Processor.ProcessTurn(ctx, conversationID, turnID)
	if err != nil {
		kind := fault.KindOf(err)
		if kind == "" {
			kind = fault.KindStorage
		}
		if a.Log != nil {
			a.Log.Warn("turn processing failed",
				"conversation_id", in.ConversationID, "turn_id", in.TurnID, "kind", kind, "error", err)
		}
		return Result{}, temporal.NewApplicationErrorWithCause(
			fmt.Sprintf("process turn: %v", err), string(kind), err)
	}

	out := Result{}
	if res != nil && res.AssistantTurnID != uuid.Nil {
		out.AssistantTurnID = res.AssistantTurnID.String()
	}
	return out, nil
}
