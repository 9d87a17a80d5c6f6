package goal

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines savings goal persistence operations
type Repository interface {
	Create(ctx context.Context, g *Goal) error
	GetByID(ctx context.Context, id uuid.UUID) (*Goal, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Goal, error)

	// ListNotCompleted returns every goal eligible for a status sweep
	ListNotCompleted(ctx context.Context) ([]*Goal, error)

	// Update persists the full goal row using optimistic locking
	Update(ctx context.Context, g *Goal) error

	// UpdateStatus writes only the status column, guarded by the version
	// the caller read. Used by the sweep so unchanged goals cost no write.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, version int) error

	// LockForUpdate acquires a row lock so concurrent ledger operations
	// on the same goal serialize around the balance check
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Goal, error)

	// Delete removes the goal; its ledger entries cascade with it
	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx pgx.Tx) Repository
}

// ErrGoalNotFound indicates missing goal
type ErrGoalNotFound struct {
	GoalID uuid.UUID
}

func (e ErrGoalNotFound) Error() string {
	return "savings goal not found: " + e.GoalID.String()
}

// Is implements the errors.Is interface for ErrGoalNotFound
func (e ErrGoalNotFound) Is(target error) bool {
	t, ok := target.(ErrGoalNotFound)
	if !ok {
		return false
	}
	if t.GoalID == uuid.Nil {
		return true
	}
	return e.GoalID == t.GoalID
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	GoalID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for goal: " + e.GoalID.String()
}

// Is implements the errors.Is interface for ErrConcurrentModification
func (e ErrConcurrentModification) Is(target error) bool {
	t, ok := target.(ErrConcurrentModification)
	if !ok {
		return false
	}
	if t.GoalID == uuid.Nil {
		return true
	}
	return e.GoalID == t.GoalID
}
