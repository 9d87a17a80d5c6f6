package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nestegg/savings-ledger/internal/domain/goal"
	"github.com/nestegg/savings-ledger/internal/domain/ledger"
)

// TxRunner runs a function inside a database transaction. Satisfied by
// *persistence.PostgresDB.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// GoalUpdate carries the optional fields of a goal details update. Nil
// pointers leave the corresponding field unchanged; ClearTargetDate
// removes the deadline.
type GoalUpdate struct {
	Name            *string
	Description     *string
	TargetAmount    *int64
	TargetDate      *time.Time
	ClearTargetDate bool
}

// GoalService defines the interface for savings goal operations
type GoalService interface {
	// CreateGoal creates a new savings goal. A positive initial amount is
	// recorded as the goal's first ledger entry in the same transaction.
	CreateGoal(ctx context.Context, ownerID uuid.UUID, name, description string, targetAmount, initialAmount int64, targetDate *time.Time) (*goal.Goal, error)

	// GetGoalByID retrieves a goal by its ID
	// Returns ErrGoalNotFound if the goal doesn't exist
	GetGoalByID(ctx context.Context, id uuid.UUID) (*goal.Goal, error)

	// ListGoalsByOwner retrieves all goals belonging to an owner
	ListGoalsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*goal.Goal, error)

	// UpdateGoal applies a details update and re-derives the status
	UpdateGoal(ctx context.Context, id uuid.UUID, update GoalUpdate) (*goal.Goal, error)

	// SetGoalStatus applies a manual status override
	SetGoalStatus(ctx context.Context, id uuid.UUID, status goal.Status) (*goal.Goal, error)

	// DeleteGoal removes a goal and, by cascade, its ledger entries
	DeleteGoal(ctx context.Context, id uuid.UUID) error
}

// LedgerService defines the interface for deposit and withdrawal operations
type LedgerService interface {
	// Deposit adds funds to a goal, recording the ledger entry and the
	// balance change atomically. Returns the updated goal and the entry.
	Deposit(ctx context.Context, goalID uuid.UUID, amount int64, entryDate time.Time) (*goal.Goal, *ledger.Entry, error)

	// Withdraw removes funds from a goal. The ledger entry and balance
	// change commit atomically; the expense record is written afterwards
	// and its failure surfaces as ErrExpenseNotRecorded with the
	// withdrawal already applied.
	Withdraw(ctx context.Context, goalID uuid.UUID, amount int64, entryDate time.Time) (*goal.Goal, *ledger.Entry, error)

	// GetHistory retrieves the paginated history read model for a goal
	// Returns records, total count, and any error
	GetHistory(ctx context.Context, goalID uuid.UUID, page, perPage int) ([]*ledger.HistoryRecord, int64, error)
}
