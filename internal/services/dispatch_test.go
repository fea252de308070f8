package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.temporal.io/api/enums/v1"

	"github.com/avelldro/converse-backend/internal/platform/fault"
	"github.com/avelldro/converse-backend/internal/platform/logger"
)

func TestStartOptionsLeaveWorkflowRetryToActivityPolicy(t *testing.T) {
	turnID := uuid.New()
	opts := startOptions(turnID, "converse")

	if opts.RetryPolicy != nil {
		t.Fatal("workflow start options must not carry a retry policy; a terminal activity failure would re-run the whole workflow")
	}
	if opts.ID != "chat-turn-"+turnID.String() {
		t.Fatalf("workflow id=%q", opts.ID)
	}
	if opts.WorkflowIDReusePolicy != enums.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE {
		t.Fatalf("reuse policy=%v, want reject duplicate", opts.WorkflowIDReusePolicy)
	}
}

func TestStartOptionsTaskQueueDefault(t *testing.T) {
	opts := startOptions(uuid.New(), "  ")
	if opts.TaskQueue != "converse" {
		t.Fatalf("task queue=%q, want default", opts.TaskQueue)
	}
}

func TestDispatchTurnWithoutClient(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	d := NewTurnDispatcher(log, nil, "converse")

	got := d.DispatchTurn(context.Background(), uuid.New(), uuid.New())
	if fault.KindOf(got) != fault.KindConfiguration {
		t.Fatalf("kind=%q, want configuration_error", fault.KindOf(got))
	}
}
