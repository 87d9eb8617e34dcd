package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// ProducerMetrics counts publish attempts by topic and outcome
type ProducerMetrics struct {
	PublishTotal *prometheus.CounterVec
}

// NewProducerMetrics registers producer metrics on the given registerer
func NewProducerMetrics(registry prometheus.Registerer) *ProducerMetrics {
	m := &ProducerMetrics{
		PublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafka_publish_total",
				Help: "Total Kafka publish attempts.",
			},
			[]string{"topic", "status"},
		),
	}
	registry.MustRegister(m.PublishTotal)
	return m
}

// Publisher publishes JSON-encoded messages
type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, value any) error
	Close() error
}

// SyncProducer wraps a sarama synchronous producer
type SyncProducer struct {
	producer sarama.SyncProducer
	log      *logrus.Logger
	metrics  *ProducerMetrics
}

// NewSyncProducer creates a Kafka producer with idempotent writes and
// all-replica acks.
func NewSyncProducer(brokers []string, log *logrus.Logger, metrics *ProducerMetrics) (*SyncProducer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers required")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_7_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 250 * time.Millisecond

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &SyncProducer{producer: producer, log: log, metrics: metrics}, nil
}

// PublishJSON marshals value and publishes it to topic under key
func (p *SyncProducer) PublishJSON(ctx context.Context, topic, key string, value any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal kafka payload: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}

	_, _, err = p.producer.SendMessage(msg)
	if p.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		p.metrics.PublishTotal.WithLabelValues(topic, status).Inc()
	}
	if err != nil {
		p.log.Errorf("Kafka publish to %s failed: %v", topic, err)
		return fmt.Errorf("kafka publish failed: %w", err)
	}
	return nil
}

// Close shuts down the underlying producer
func (p *SyncProducer) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
