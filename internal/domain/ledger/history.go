package ledger

import (
	"time"

	"github.com/google/uuid"
)

// HistoryRecord is the denormalized read-model projection of a ledger
// entry, written to MongoDB by the outbox poller. It carries the goal
// name and owner so history queries need no join back to Postgres.
type HistoryRecord struct {
	EntryID    uuid.UUID `json:"entry_id" bson:"entry_id"`
	GoalID     uuid.UUID `json:"goal_id" bson:"goal_id"`
	OwnerID    uuid.UUID `json:"owner_id" bson:"owner_id"`
	GoalName   string    `json:"goal_name" bson:"goal_name"`
	Type       EntryType `json:"type" bson:"type"`
	Amount     int64     `json:"amount" bson:"amount"`
	Balance    int64     `json:"balance" bson:"balance"` // Goal balance after the entry applied
	EntryDate  time.Time `json:"entry_date" bson:"entry_date"`
	RecordedAt time.Time `json:"recorded_at" bson:"recorded_at"`
}
