package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/avelldro/converse-backend/internal/app"
	"github.com/avelldro/converse-backend/internal/temporalx/temporalworker"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if a.Services.Temporal == nil {
		a.Log.Error("TEMPORAL_ADDRESS is required for the worker")
		os.Exit(1)
	}

	runner, err := temporalworker.NewRunner(a.Log, a.Services.Temporal, a.Services.Respond)
	if err != nil {
		a.Log.Error("Could not init Temporal worker", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Start(ctx); err != nil {
		a.Log.Error("Temporal worker failed to start", "error", err)
		os.Exit(1)
	}
	a.Log.Info("Worker running; waiting for jobs")
	<-ctx.Done()
}
