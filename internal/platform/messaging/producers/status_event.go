package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/nestegg/savings-ledger/internal/config"
	"github.com/nestegg/savings-ledger/internal/domain/goal"
)

// StatusEventProducer publishes goal status transition events to Kafka.
// A nil producer is valid and drops events silently: event publishing is
// an optional integration and the ledger must keep working without it.
type StatusEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// Returns nil producer if cfg.StatusEventsTopic is empty (events disabled)
func NewStatusEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*StatusEventProducer, error) {
	if cfg.StatusEventsTopic == "" {
		logger.Info("Status events topic is not configured. StatusEventProducer will not be initialized.")
		return nil, nil // Events are disabled, not an error.
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for status event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.StatusEventsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure topic %s exists for status event producer: %w", cfg.StatusEventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.StatusEventsTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write status event messages synchronously", "topic", cfg.StatusEventsTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote status event messages synchronously", "topic", cfg.StatusEventsTopic, "count", len(messages))
			}
		},
	}

	return &StatusEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.StatusEventsTopic,
	}, nil
}

// Publish writes a status transition event keyed by goal ID so that all
// events for one goal land on the same partition in order.
func (p *StatusEventProducer) Publish(ctx context.Context, event *goal.StatusChangedEvent) error {
	if p == nil || p.writer == nil {
		return nil // Events disabled, drop silently.
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status event for goal %s: %w", event.GoalID, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.GoalID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("goal.status.changed")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish status event",
			"topic", p.topic,
			"goal_id", event.GoalID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to publish status event to %s: %w", p.topic, err)
	}

	p.logger.Info("Published status event",
		"topic", p.topic,
		"goal_id", event.GoalID.String(),
		"previous", event.Previous,
		"current", event.Current,
	)
	return nil
}

func (p *StatusEventProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	p.logger.Info("Closing status event Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
