package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nestegg/savings-ledger/internal/domain/ledger"
	"github.com/nestegg/savings-ledger/internal/platform/persistence"
)

// LedgerRepository implements the ledger.Repository interface for PostgreSQL.
// The ledger is append-only: entries are inserted inside the same
// transaction that moves the goal balance, and never updated or deleted.
type LedgerRepository struct {
	querier   persistence.Querier
	opTimeout time.Duration
	logger    *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier:   db.Pool(),
		opTimeout: db.OpTimeout(),
		logger:    logger,
	}
}

// WithTx wraps the repository with a transaction so the entry insert is
// atomic with the goal balance update.
func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create appends a ledger entry
func (r *LedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries (id, goal_id, type, amount, entry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	ctx, cancel := opContext(ctx, r.opTimeout)
	defer cancel()

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.GoalID,
		entry.Type,
		entry.Amount,
		entry.EntryDate,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create ledger entry", "goal_id", entry.GoalID.String(), "error", err)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}
