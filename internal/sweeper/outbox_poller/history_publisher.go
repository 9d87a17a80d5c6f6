package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nestegg/savings-ledger/internal/domain/ledger"
	"github.com/nestegg/savings-ledger/internal/domain/outbox"
)

// HistoryPublisher projects outbox messages into the history read model
type HistoryPublisher interface {
	PublishToHistory(ctx context.Context, message *outbox.Message) error
}

// HistoryPublisherImpl implements HistoryPublisher
type HistoryPublisherImpl struct {
	outboxRepo  outbox.Repository
	historyRepo ledger.HistoryRepository
	logger      *slog.Logger
}

// NewHistoryPublisher creates a new publisher
func NewHistoryPublisher(
	outboxRepo outbox.Repository,
	historyRepo ledger.HistoryRepository,
	logger *slog.Logger,
) HistoryPublisher {
	return &HistoryPublisherImpl{
		outboxRepo:  outboxRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// PublishToHistory writes the message's history record to MongoDB and
// marks the message processed. The write is an upsert keyed on entry
// ID, so redelivering a message after a crash between the two steps
// cannot duplicate a record.
func (p *HistoryPublisherImpl) PublishToHistory(ctx context.Context, message *outbox.Message) error {
	record, err := message.HistoryRecord()
	if err != nil {
		p.logger.Error("Failed to unmarshal history record from outbox payload",
			"outbox_id", message.ID, "entry_id", message.EntryID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	if err := p.historyRepo.Upsert(ctx, record); err != nil {
		p.logger.Error("Failed to upsert history record", "outbox_id", message.ID, "entry_id", record.EntryID, "error", err)
		return fmt.Errorf("failed to upsert history record for entry %s: %w", record.EntryID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		p.logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "entry_id", record.EntryID, "error", err,
		)
		return fmt.Errorf("history write for %s OK, but failed to mark outbox %d as PROCESSED: %w", record.EntryID, message.ID, err)
	}

	p.logger.Info("Outbox message projected to history", "outbox_id", message.ID, "entry_id", record.EntryID)
	return nil
}
