package kafka

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is the transport-agnostic event shape published by the outbox
// relay and consumed by delivery workers.
type Message struct {
	Key       string            `json:"key"`
	Value     []byte            `json:"value"`
	Headers   map[string]string `json:"headers,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type MessageHandler func(msg Message) error

// NewJSONMessage marshals payload and keys the message for per-user
// ordering.
func NewJSONMessage(key string, payload any) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal message payload: %w", err)
	}
	return Message{
		Key:       key,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}, nil
}
