package repository

import (
	"context"

	"SimPulse/internal/domain/models"
	mid "SimPulse/internal/middleware"
	pkgkafka "SimPulse/pkg/kafka"
)

// KafkaTickPublisher fans emitted ticks out to the archive topic. It is the
// pipeline's downstream sink; the consumer side writes ClickHouse.
type KafkaTickPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaTickPublisher(producer *pkgkafka.Producer, topic string) *KafkaTickPublisher {
	return &KafkaTickPublisher{producer: producer, topic: topic}
}

// Process publishes one tick keyed by symbol so per-symbol ordering survives
// partitioning.
func (p *KafkaTickPublisher) Process(ctx context.Context, t *models.Tick) error {
	return p.producer.Publish(ctx, p.topic, []byte(t.Symbol), t)
}

func (p *KafkaTickPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ mid.TickSink = (*KafkaTickPublisher)(nil)
