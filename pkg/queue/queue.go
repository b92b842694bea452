// Package queue provides a best-effort work-queue sink with an Azure Queue
// Storage implementation. Messages dispatch downstream pre-labelling work;
// delivery is fire-and-forget and failures are the caller's to log, not retry.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"

	"github.com/tally-ai/taggo/pkg/lifecycle"
)

// Sink accepts messages for downstream workers.
type Sink interface {
	// Start registers a startup hook that ensures the queue exists.
	Start(lc *lifecycle.Coordinator) error
	// Enqueue serializes message as JSON and posts it to the queue within
	// the configured timeout.
	Enqueue(ctx context.Context, message any) error
}

type azure struct {
	client         *azqueue.QueueClient
	queue          string
	enqueueTimeout time.Duration
	logger         *slog.Logger
}

// New creates a queue sink from the given configuration. The client is
// constructed eagerly; the queue itself is ensured on Start.
func New(cfg *Config, logger *slog.Logger) (Sink, error) {
	service, err := azqueue.NewServiceClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create queue client: %w", err)
	}

	return &azure{
		client:         service.NewQueueClient(cfg.QueueName),
		queue:          cfg.QueueName,
		enqueueTimeout: cfg.EnqueueTimeoutDuration(),
		logger:         logger.With("system", "queue"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting queue sink")

	lc.OnStartup(func() {
		_, err := a.client.Create(lc.Context(), nil)
		if err != nil {
			a.logger.Error("queue initialization failed", "queue", a.queue, "error", err)
			return
		}
		a.logger.Info("queue ready", "queue", a.queue)
	})

	return nil
}

func (a *azure) Enqueue(ctx context.Context, message any) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal queue message: %w", err)
	}

	if a.enqueueTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.enqueueTimeout)
		defer cancel()
	}

	if _, err := a.client.EnqueueMessage(ctx, string(payload), nil); err != nil {
		return fmt.Errorf("enqueue message to %s: %w", a.queue, err)
	}

	return nil
}
