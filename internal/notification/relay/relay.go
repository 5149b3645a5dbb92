// Package relay drains the notification outbox into Kafka. The outbox
// write and the business operation share a database, so an event is never
// lost between them; the relay guarantees at-least-once delivery from
// there.
package relay

import (
	"context"
	"time"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/notification/repository"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/kafka"
)

const Topic = "local-guide.notifications"

type Relay struct {
	repo     repository.NotificationRepository
	producer *kafka.Producer
	cfg      *config.Config
}

func New(repo repository.NotificationRepository, producer *kafka.Producer, cfg *config.Config) *Relay {
	return &Relay{
		repo:     repo,
		producer: producer,
		cfg:      cfg,
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.OutboxPollInterval)
	defer ticker.Stop()

	r.cfg.Log.Info("Notification relay started",
		"poll_interval", r.cfg.OutboxPollInterval,
		"batch_size", r.cfg.OutboxBatchSize,
	)

	for {
		select {
		case <-ctx.Done():
			r.cfg.Log.Info("Notification relay stopped")
			return
		case <-ticker.C:
			if err := r.DrainOnce(ctx); err != nil {
				r.cfg.Log.Error("Outbox drain failed", "error", err)
			}
		}
	}
}

// DrainOnce publishes one batch of undispatched notifications. Rows are
// only marked dispatched after a successful publish; a crash in between
// redelivers, which consumers must tolerate.
func (r *Relay) DrainOnce(ctx context.Context) error {
	pending, err := r.repo.FindUndispatched(ctx, r.cfg.OutboxBatchSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	published := make([]string, 0, len(pending))
	for _, n := range pending {
		msg, err := kafka.NewJSONMessage(n.UserID, n)
		if err != nil {
			r.cfg.Log.Error("Failed to encode notification", "id", n.ID, "error", err)
			continue
		}
		if err := r.producer.Publish(ctx, msg); err != nil {
			r.cfg.Log.Error("Failed to publish notification", "id", n.ID, "error", err)
			break
		}
		published = append(published, n.ID)
	}

	if err := r.repo.MarkDispatched(ctx, published); err != nil {
		return err
	}

	if len(published) > 0 {
		r.cfg.Log.Info("Outbox batch dispatched", "count", len(published))
	}
	return nil
}
