package usecase

import (
	"context"
	"encoding/json"
	"time"

	"SimPulse/internal/domain/models"
	domrepo "SimPulse/internal/domain/repository"
	pkgkafka "SimPulse/pkg/kafka"
)

// KafkaTicksHandler consumes tick messages off the fan-out topic and appends
// them to the durable archive.
type KafkaTicksHandler struct {
	topic   string
	archive domrepo.TickArchive
	metrics domrepo.Metrics
}

func NewKafkaTicksHandler(topic string, archive domrepo.TickArchive, metrics domrepo.Metrics) *KafkaTicksHandler {
	return &KafkaTicksHandler{topic: topic, archive: archive, metrics: metrics}
}

func (h *KafkaTicksHandler) Topic() string { return h.topic }

// Handle decodes one tick and stores it. Timestamp is unix milliseconds on
// the wire.
func (h *KafkaTicksHandler) Handle(ctx context.Context, b []byte) error {
	var t models.Tick
	if err := json.Unmarshal(b, &t); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	h.metrics.RecordLatency("archive_e2e_seconds", time.Since(time.UnixMilli(t.Timestamp)).Seconds())

	start := time.Now()
	err := h.archive.Store(ctx, &t)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTicksHandler)(nil)
