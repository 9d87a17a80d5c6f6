package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages the append-only ledger in Postgres. Entries are
// only ever inserted, inside the same transaction that moves the goal
// balance.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	WithTx(tx pgx.Tx) Repository
}

// HistoryRepository manages the MongoDB history read model with
// pagination support. Records are written exclusively by the outbox
// poller; retries make writes idempotent per entry.
type HistoryRepository interface {
	Upsert(ctx context.Context, record *HistoryRecord) error
	GetByGoalID(ctx context.Context, goalID uuid.UUID, limit, offset int) ([]*HistoryRecord, error)
	CountByGoalID(ctx context.Context, goalID uuid.UUID) (int64, error)
}
