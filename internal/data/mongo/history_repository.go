// Package mongo implements the ledger history read model. History
// records are denormalized copies of committed ledger entries, written
// only by the outbox poller and queried by the API for per-goal history.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nestegg/savings-ledger/internal/domain/ledger"
)

const (
	// HistoryCollectionName is the name of the history collection in MongoDB
	HistoryCollectionName = "ledger_history"
)

// HistoryRepository implements the ledger.HistoryRepository interface for MongoDB
type HistoryRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewHistoryRepository creates a new MongoDB history repository
func NewHistoryRepository(logger *slog.Logger, db *mongo.Database) ledger.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert stores a history record keyed by its entry ID. The poller may
// retry a message after a partial failure, so the write replaces any
// record already projected for the same entry instead of duplicating it.
func (r *HistoryRepository) Upsert(ctx context.Context, record *ledger.HistoryRecord) error {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"entry_id": record.EntryID}
	opts := options.Replace().SetUpsert(true)

	_, err := collection.ReplaceOne(ctx, filter, record, opts)
	if err != nil {
		r.logger.Error("Failed to upsert history record",
			"entry_id", record.EntryID.String(),
			"goal_id", record.GoalID.String(),
			"error", err)
		return fmt.Errorf("failed to upsert history record: %w", err)
	}

	return nil
}

// GetByGoalID retrieves paginated history records for a goal.
// Results are sorted by entry date in descending order (newest first).
func (r *HistoryRepository) GetByGoalID(ctx context.Context, goalID uuid.UUID, limit, offset int) ([]*ledger.HistoryRecord, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"goal_id": goalID}
	opts := options.Find().
		SetSort(bson.M{"entry_date": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get history records",
			"goal_id", goalID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get history records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*ledger.HistoryRecord
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode history records",
			"goal_id", goalID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode history records: %w", err)
	}

	return records, nil
}

// CountByGoalID counts the total number of history records for a goal
func (r *HistoryRepository) CountByGoalID(ctx context.Context, goalID uuid.UUID) (int64, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"goal_id": goalID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count history records",
			"goal_id", goalID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count history records: %w", err)
	}

	return count, nil
}
