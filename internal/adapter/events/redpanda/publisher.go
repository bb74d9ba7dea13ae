// Package redpanda publishes domain events to a Redpanda/Kafka topic.
//
// Events are notifications consumed by mailers and other subscribers
// outside this core; delivery is at-least-once and the core never depends
// on a subscriber existing.
package redpanda

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/internship-tracker/internal/adapter/observability"
	"github.com/fairyhunter13/internship-tracker/internal/domain"
)

// Event type names carried in the record header.
const (
	EventApplicationSubmitted     = "application.submitted"
	EventApplicationStatusChanged = "application.status_changed"
)

// Publisher implements domain.EventPublisher on a franz-go client.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher connects a producer and ensures the topic exists. Producer
// spans are wired through kotel into the global tracer provider.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic name cannot be empty")
	}

	kotelService := kotel.NewKotel(
		kotel.WithTracer(kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))),
	)
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequestRetries(10),
		kgo.WithHooks(kotelService.Hooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda client: %w", err)
	}

	if err := createTopicIfNotExists(client, topic, 1, 1); err != nil {
		slog.Warn("failed to create topic, it may already exist",
			slog.String("topic", topic), slog.Any("error", err))
	}
	return &Publisher{client: client, topic: topic}, nil
}

// PublishApplicationSubmitted emits the submitted event keyed by user so
// per-user ordering holds.
func (p *Publisher) PublishApplicationSubmitted(ctx domain.Context, ev domain.ApplicationSubmitted) error {
	return p.publish(ctx, EventApplicationSubmitted, ev.Application.UserID, ev)
}

// PublishApplicationStatusChanged emits the status-change event keyed by
// user.
func (p *Publisher) PublishApplicationStatusChanged(ctx domain.Context, ev domain.ApplicationStatusChanged) error {
	return p.publish(ctx, EventApplicationStatusChanged, ev.Application.UserID, ev)
}

// publish produces one record, retrying transient failures with
// exponential backoff bounded by the caller's context.
func (p *Publisher) publish(ctx domain.Context, eventType, key string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("op=events.publish: marshal: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(key),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(200*time.Millisecond),
		backoff.WithMaxInterval(2*time.Second),
	), 5), ctx)
	err = backoff.Retry(func() error {
		return p.client.ProduceSync(ctx, record).FirstErr()
	}, policy)
	if err != nil {
		observability.EventPublishFailuresTotal.WithLabelValues(eventType).Inc()
		return fmt.Errorf("op=events.publish: %w", err)
	}
	observability.EventsPublishedTotal.WithLabelValues(eventType).Inc()
	slog.Debug("event published", slog.String("type", eventType), slog.String("key", key))
	return nil
}

// Close flushes and closes the producer.
func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
