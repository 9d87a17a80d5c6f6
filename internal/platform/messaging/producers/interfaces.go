package producers

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/nestegg/savings-ledger/internal/domain/goal"
)

// StatusEventPublisher handles publishing goal status transition events
type StatusEventPublisher interface {
	Publish(ctx context.Context, event *goal.StatusChangedEvent) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
