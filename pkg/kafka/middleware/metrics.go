package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"parkbook/pkg/kafka"
)

// Metrics counts published and consumed booking events for one process.
// The counters are summarized in the shutdown log line.
type Metrics struct {
	published       atomic.Int64
	publishFailed   atomic.Int64
	publishDuration atomic.Int64

	consumed        atomic.Int64
	consumeFailed   atomic.Int64
	consumeDuration atomic.Int64
}

type MetricsSnapshot struct {
	Published         int64
	PublishFailed     int64
	AvgPublishLatency time.Duration
	Consumed          int64
	ConsumeFailed     int64
	AvgConsumeLatency time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.publishDuration.Add(int64(time.Since(start)))
		if err != nil {
			m.publishFailed.Add(1)
			return err
		}
		m.published.Add(1)
		return nil
	}
}

func (m *Metrics) ConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.consumeDuration.Add(int64(time.Since(start)))
		if err != nil {
			m.consumeFailed.Add(1)
			return err
		}
		m.consumed.Add(1)
		return nil
	}
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	published, publishFailed := m.published.Load(), m.publishFailed.Load()
	consumed, consumeFailed := m.consumed.Load(), m.consumeFailed.Load()

	return MetricsSnapshot{
		Published:         published,
		PublishFailed:     publishFailed,
		AvgPublishLatency: average(m.publishDuration.Load(), published+publishFailed),
		Consumed:          consumed,
		ConsumeFailed:     consumeFailed,
		AvgConsumeLatency: average(m.consumeDuration.Load(), consumed+consumeFailed),
	}
}

// LogAttrs renders the snapshot as logger key/value pairs.
func (s MetricsSnapshot) LogAttrs() []any {
	return []any{
		"published", s.Published,
		"publish_failed", s.PublishFailed,
		"avg_publish_latency", s.AvgPublishLatency,
		"consumed", s.Consumed,
		"consume_failed", s.ConsumeFailed,
		"avg_consume_latency", s.AvgConsumeLatency,
	}
}

func average(total, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / count)
}
