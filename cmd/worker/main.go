package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	availabilityrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/availability/repository"
	availabilityservice "github.com/azmiruddin-143/Local-Guide-Server/internal/availability/service"
	availabilityvalidator "github.com/azmiruddin-143/Local-Guide-Server/internal/availability/validator"
	notificationrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/notification/repository"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/notification/relay"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/kafka"
	kafkaconfig "github.com/azmiruddin-143/Local-Guide-Server/pkg/kafka/config"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

const (
	ServiceName   = "local-guide-worker"
	consumerGroup = "local-guide-delivery"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kafkaCfg := kafkaconfig.Load()
	dlqTopic := relay.Topic + ".dlq"

	producer, err := kafka.NewProducer(kafkaCfg, relay.Topic, dlqTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	defer producer.Close()

	consumer, err := kafka.NewConsumer(kafkaCfg, relay.Topic, consumerGroup, dlqTopic, deliverNotification(cfg))
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	defer consumer.Close()

	notifications := notificationrepo.NewMongoNotificationRepository(cfg)
	outboxRelay := relay.New(notifications, producer, cfg)

	availabilities := availabilityrepo.NewMongoAvailabilityRepository(cfg)
	slotLocks := availabilityrepo.NewSlotLockRepository(cfg)
	slotValidator := availabilityvalidator.NewAvailabilityValidator(cfg.Log, cfg.AvailabilityHorizonDays)
	availabilitySvc := availabilityservice.NewAvailabilityService(availabilities, slotLocks, slotValidator, cfg)

	cfg.Log.Info("Starting worker",
		"sweep_interval", cfg.SweepInterval,
		"topic", relay.Topic,
	)

	go outboxRelay.Run(ctx)
	go runSweep(ctx, cfg, availabilitySvc)
	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			cfg.Log.Error("Kafka consumer stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	cfg.Log.Info("Worker shutting down")
}

// runSweep deletes expired availability slots on a fixed interval. The
// sweep is idempotent, so overlapping runs after a restart are harmless.
func runSweep(ctx context.Context, cfg *config.Config, availabilitySvc availabilityservice.AvailabilityService) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := availabilitySvc.Cleanup(ctx)
			if err != nil {
				cfg.Log.Error("Availability sweep failed", "error", err)
				continue
			}
			cfg.Log.Info("Availability sweep completed", "deleted", deleted)
		}
	}
}

// deliverNotification is the consumer side of the outbox. Real channel
// adapters (email, push) would hang off this handler; for now delivery
// is the structured log record.
func deliverNotification(cfg *config.Config) kafka.MessageHandler {
	return func(msg kafka.Message) error {
		var n model.Notification
		if err := json.Unmarshal(msg.Value, &n); err != nil {
			return fmt.Errorf("failed to decode notification event: %w", err)
		}

		cfg.Log.Info("Notification delivered",
			"id", n.ID,
			"user_id", n.UserID,
			"type", n.Type,
			"priority", n.Priority,
		)
		return nil
	}
}
