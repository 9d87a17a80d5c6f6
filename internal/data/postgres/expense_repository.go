package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nestegg/savings-ledger/internal/domain/expense"
	"github.com/nestegg/savings-ledger/internal/platform/persistence"
)

// ExpenseRepository implements the expense.Repository interface for PostgreSQL
type ExpenseRepository struct {
	querier   persistence.Querier
	opTimeout time.Duration
	logger    *slog.Logger
}

// NewExpenseRepository creates a new PostgreSQL expense repository
func NewExpenseRepository(logger *slog.Logger, db *persistence.PostgresDB) expense.Repository {
	return &ExpenseRepository{
		querier:   db.Pool(),
		opTimeout: db.OpTimeout(),
		logger:    logger,
	}
}

// Create stores the bookkeeping expense row left behind by a withdrawal.
// This runs outside the withdrawal's transaction; a failure here is
// surfaced to the caller as a partial success, not a rollback.
func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (id, owner_id, category, description, amount, expense_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	ctx, cancel := opContext(ctx, r.opTimeout)
	defer cancel()

	_, err := r.querier.Exec(ctx, query,
		e.ID,
		e.OwnerID,
		e.Category,
		e.Description,
		e.Amount,
		e.ExpenseDate,
		e.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", "owner_id", e.OwnerID.String(), "error", err)
		return fmt.Errorf("failed to create expense: %w", err)
	}

	return nil
}
