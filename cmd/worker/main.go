// Command worker runs analysis jobs without serving the public API.
// Freshly ingested graphs are picked up through graph.created events and
// analyzed on the shared pool; job progress is logged for operators.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"netgraph-backend/domain/core/valueobjects"
	domainevents "netgraph-backend/domain/events"
	"netgraph-backend/infrastructure/di"
	"netgraph-backend/infrastructure/messaging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := di.New(ctx)
	if err != nil {
		os.Stderr.WriteString("startup failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer container.Close()
	logger := container.Logger

	dispatcher, ok := container.Publisher.(*messaging.LocalDispatcher)
	if !ok {
		// Deployed environments deliver events through the bus; this
		// binary only drives the in-process path.
		logger.Fatal("worker requires the local event dispatcher")
	}

	dispatcher.Subscribe("graph.created", func(ctx context.Context, evt domainevents.DomainEvent) {
		graphID := valueobjects.GraphID(evt.AggregateID())
		jobID, err := container.Pool.Submit(graphID)
		if err != nil {
			logger.Error("failed to enqueue analysis",
				zap.String("graph_id", graphID.String()),
				zap.Error(err),
			)
			return
		}
		logger.Info("analysis enqueued",
			zap.String("graph_id", graphID.String()),
			zap.String("job_id", jobID),
		)
	})

	go func() {
		for update := range container.Pool.Updates() {
			logger.Info("job progress",
				zap.String("job_id", update.JobID),
				zap.String("graph_id", update.GraphID),
				zap.String("state", string(update.State)),
				zap.String("phase", update.Phase),
				zap.Int("percent", update.Percent),
			)
		}
	}()

	logger.Info("worker running")
	<-ctx.Done()
	logger.Info("worker stopping")
}
