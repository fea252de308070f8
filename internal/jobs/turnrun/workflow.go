package turnrun

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/avelldro/converse-backend/internal/platform/fault"
)

// Workflow runs one respond attempt per activity execution. Redelivery
// semantics live in the retry policy: transient failures are retried,
// terminal ones are not.
func Workflow(ctx workflow.Context, in Input) (Result, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
			NonRetryableErrorTypes: []string{
				string(fault.KindNotFound),
				string(fault.KindValidation),
				string(fault.KindConfiguration),
			},
		},
	})

	var out Result
	err := workflow.ExecuteActivity(ctx, ActivityProcess, in).Get(ctx, &out)
	return out, err
}
