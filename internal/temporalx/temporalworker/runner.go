package temporalworker

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/avelldro/converse-backend/internal/jobs/turnrun"
	"github.com/avelldro/converse-backend/internal/platform/envutil"
	"github.com/avelldro/converse-backend/internal/platform/logger"
	"github.com/avelldro/converse-backend/internal/temporalx"
)

// Runner hosts the Temporal worker that drains the respond queue.
type Runner struct {
	log       *logger.Logger
	tc        temporalsdkclient.Client
	processor turnrun.TurnProcessor
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, processor turnrun.TurnProcessor) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if processor == nil {
		return nil, fmt.Errorf("temporal worker missing processor")
	}
	return &Runner{log: log, tc: tc, processor: processor}, nil
}

func (r *Runner) Start(ctx context.Context) error {
	if r == nil || r.tc == nil {
		return fmt.Errorf("temporal worker not initialized")
	}

	cfg := temporalx.LoadConfig()
	if r.log != nil {
		r.log.Info("Starting Temporal worker", "address", cfg.Address, "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue)
	}

	maxWait := time.Duration(envutil.Int("TEMPORAL_WORKER_START_MAX_WAIT_SECONDS", 60)) * time.Second
	backoff := time.Duration(envutil.Int("TEMPORAL_WORKER_START_BACKOFF_MS", 250)) * time.Millisecond
	backoffMax := time.Duration(envutil.Int("TEMPORAL_WORKER_START_BACKOFF_MAX_MS", 5000)) * time.Millisecond

	deadline := time.Now().Add(maxWait)

	for attempt := 1; ; attempt++ {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		w := r.newWorker(cfg.TaskQueue)
		startErr := w.Start()
		if startErr == nil {
			if ctx != nil {
				go func() {
					<-ctx.Done()
					w.Stop()
				}()
			}
			if r.log != nil {
				r.log.Info("Temporal worker started", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue, "attempts", attempt)
			}
			return nil
		}
		w.Stop()

		if maxWait <= 0 || time.Now().After(deadline) {
			return startErr
		}
		if r.log != nil {
			r.log.Warn("Temporal worker failed to start; retrying", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue, "attempt", attempt, "error", startErr)
		}
		if sleep := clampBackoff(backoff, backoffMax, attempt); sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

func (r *Runner) newWorker(taskQueue string) worker.Worker {
	concurrency := envutil.Int("WORKER_CONCURRENCY", 4)
	if concurrency < 1 {
		concurrency = 1
	}

	w := worker.New(r.tc, taskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: concurrency,
	})

	acts := &turnrun.Activities{
		Log:       r.log,
		Processor: r.processor,
	}

	w.RegisterWorkflowWithOptions(turnrun.Workflow, workflow.RegisterOptions{Name: turnrun.WorkflowName})
	w.RegisterActivityWithOptions(acts.Process, activity.RegisterOptions{Name: turnrun.ActivityProcess})
	return w
}

func clampBackoff(base time.Duration, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	sleep := base
	for i := 1; i < attempt; i++ {
		sleep *= 2
		if max > 0 && sleep >= max {
			return max
		}
	}
	if max > 0 && sleep > max {
		return max
	}
	return sleep
}
