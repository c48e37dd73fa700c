package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/JIATech/SIGVIP-sub002/internal/platform/kafka"
)

// KafkaSink publishes events to a Kafka topic, keyed by a fresh event id
// so downstream consumers can deduplicate on redelivery.
type KafkaSink struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaSink(producer *kafka.Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	key := []byte(uuid.NewString())
	return s.producer.Produce(ctx, s.topic, key, value)
}
