package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	kafka_config "github.com/azmiruddin-143/Local-Guide-Server/pkg/kafka/config"
)

// Consumer reads a topic in a consumer group and hands each message to a
// handler, retrying with backoff before parking the message in the DLQ.
type Consumer struct {
	reader     *kafka.Reader
	dlqWriter  *kafka.Writer
	handler    MessageHandler
	maxRetries int
	closed     bool
	mu         sync.RWMutex
	wg         sync.WaitGroup
}

func NewConsumer(cfg *kafka_config.Config, topic, groupID, dlqTopic string, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" || groupID == "" {
		return nil, fmt.Errorf("topic and group ID are required")
	}
	if handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}

	consumer := &Consumer{
		handler:    handler,
		maxRetries: cfg.ConsumerMaxRetries,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Brokers,
			Topic:          topic,
			GroupID:        groupID,
			MinBytes:       cfg.ConsumerMinBytes,
			MaxBytes:       cfg.ConsumerMaxBytes,
			MaxWait:        cfg.ConsumerMaxWait,
			CommitInterval: cfg.ConsumerCommitInterval,
			StartOffset:    cfg.ConsumerStartOffset,
			Logger:         kafka.LoggerFunc(func(msg string, args ...any) {}),
			ErrorLogger:    kafka.LoggerFunc(log.Printf),
		}),
	}

	if dlqTopic != "" {
		consumer.dlqWriter = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        dlqTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
			ErrorLogger:  kafka.LoggerFunc(log.Printf),
		}
	}

	return consumer, nil
}

// Run blocks until ctx is cancelled or the consumer is closed.
func (c *Consumer) Run(ctx context.Context) error {
	c.wg.Add(1)
	defer c.wg.Done()

	for {
		kafkaMsg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			c.mu.RLock()
			closed := c.closed
			c.mu.RUnlock()
			if closed {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		msg := Message{
			Key:       string(kafkaMsg.Key),
			Value:     kafkaMsg.Value,
			Timestamp: kafkaMsg.Time,
			Headers:   make(map[string]string, len(kafkaMsg.Headers)),
		}
		for _, h := range kafkaMsg.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}

		c.process(ctx, msg, kafkaMsg)
	}
}

func (c *Consumer) process(ctx context.Context, msg Message, raw kafka.Message) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return
			}
		}
		if lastErr = c.handler(msg); lastErr == nil {
			return
		}
	}

	log.Printf("kafka: message %q failed after %d retries: %v", msg.Key, c.maxRetries, lastErr)
	if c.dlqWriter != nil {
		raw.Headers = append(raw.Headers, kafka.Header{Key: "x-dlq-error", Value: []byte(lastErr.Error())})
		if err := c.dlqWriter.WriteMessages(ctx, raw); err != nil {
			log.Printf("kafka: failed to park message %q in DLQ: %v", msg.Key, err)
		}
	}
}

func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.reader.Close()
	c.wg.Wait()

	if c.dlqWriter != nil {
		if dlqErr := c.dlqWriter.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}
