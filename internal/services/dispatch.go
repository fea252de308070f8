package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/avelldro/converse-backend/internal/platform/fault"
	"github.com/avelldro/converse-backend/internal/platform/logger"
)

// TurnDispatcher hands a stored user turn to the deferred respond pipeline.
type TurnDispatcher interface {
	DispatchTurn(ctx context.Context, conversationID, turnID uuid.UUID) error
}

type temporalTurnDispatcher struct {
	log       *logger.Logger
	temporal  temporalsdkclient.Client
	taskQueue string
}

func NewTurnDispatcher(log *logger.Logger, tc temporalsdkclient.Client, taskQueue string) TurnDispatcher {
	return &temporalTurnDispatcher{
		log:       log.With("service", "TurnDispatcher"),
		temporal:  tc,
		taskQueue: taskQueue,
	}
}

// turnDispatch mirrors turnrun.Input. Keep the shape and the workflow name
// literal to avoid an import cycle with turnrun.
type turnDispatch struct {
	ConversationID string `json:"conversation_id"`
	TurnID         string `json:"turn_id"`
}

// startOptions carries no RetryPolicy on purpose: redelivery lives in the
// activity retry policy inside the workflow, where terminal kinds are marked
// non-retryable. A workflow-level policy would re-run even those.
func startOptions(turnID uuid.UUID, taskQueue string) temporalsdkclient.StartWorkflowOptions {
	tq := strings.TrimSpace(taskQueue)
	if tq == "" {
		tq = "converse"
	}
	return temporalsdkclient.StartWorkflowOptions{
		ID:                    "chat-turn-" + turnID.String(),
		TaskQueue:             tq,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
}

func (s *temporalTurnDispatcher) DispatchTurn(ctx context.Context, conversationID, turnID uuid.UUID) error {
	if s == nil || s.temporal == nil {
		return fault.New(fault.KindConfiguration, "temporal not configured")
	}
	if conversationID == uuid.Nil || turnID == uuid.Nil {
		return fault.New(fault.KindValidation, "missing conversation or turn id")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	opts := startOptions(turnID, s.taskQueue)
	payload := turnDispatch{
		ConversationID: conversationID.String(),
		TurnID:         turnID.String(),
	}
	_, err := s.temporal.ExecuteWorkflow(ctx, opts, "chat_turn", payload)
	if _, ok := err.(*serviceerror.WorkflowExecutionAlreadyStarted); ok {
		// A retry of the same submit raced an earlier dispatch.
		return nil
	}
	if err != nil {
		return fault.Wrap(fault.KindStorage, err)
	}
	s.log.Debug("turn dispatched", "conversation_id", conversationID, "turn_id", turnID)
	return nil
}
