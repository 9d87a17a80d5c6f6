// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the savings ledger.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nestegg/savings-ledger/internal/domain/goal"
	"github.com/nestegg/savings-ledger/internal/platform/persistence"
)

// GoalRepository implements the goal.Repository interface for PostgreSQL
type GoalRepository struct {
	querier   persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	opTimeout time.Duration
	logger    *slog.Logger
}

// NewGoalRepository creates a new PostgreSQL goal repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewGoalRepository(logger *slog.Logger, db *persistence.PostgresDB) goal.Repository {
	return &GoalRepository{
		querier:   db.Pool(),
		opTimeout: db.OpTimeout(),
		logger:    logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls. The transaction already
// carries the operation deadline, so the clone does not add its own.
func (r *GoalRepository) WithTx(tx pgx.Tx) goal.Repository {
	return &GoalRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const goalColumns = `id, owner_id, name, description, amount, target_amount, status, target_date, version, created_at, updated_at`

// Create stores a new savings goal in the database
func (r *GoalRepository) Create(ctx context.Context, g *goal.Goal) error {
	query := `
		INSERT INTO savings_goals (id, owner_id, name, description, amount, target_amount, status, target_date, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	ctx, cancel := opContext(ctx, r.opTimeout)
	defer cancel()

	_, err := r.querier.Exec(ctx, query,
		g.ID,
		g.OwnerID,
		g.Name,
		g.Description,
		g.Amount,
		g.TargetAmount,
		g.Status,
		g.TargetDate,
		g.Version,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create goal", "error", err)
		return fmt.Errorf("failed to create goal: %w", err)
	}

	return nil
}

func scanGoal(row pgx.Row) (*goal.Goal, error) {
	var g goal.Goal
	err := row.Scan(
		&g.ID,
		&g.OwnerID,
		&g.Name,
		&g.Description,
		&g.Amount,
		&g.TargetAmount,
		&g.Status,
		&g.TargetDate,
		&g.Version,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetByID retrieves a savings goal by its ID
func (r *GoalRepository) GetByID(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM savings_goals
		WHERE id = $1
	`

	ctx, cancel := opContext(ctx, r.opTimeout)
	defer cancel()

	g, err := scanGoal(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goal.ErrGoalNotFound{GoalID: id}
		}
		r.logger.Error("Failed to get goal", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	return g, nil
}

// ListByOwner retrieves every savings goal belonging to a user, newest first
func (r *GoalRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*goal.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM savings_goals
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := opContext(ctx, r.opTimeout)
	defer cancel()

	rows, err := r.querier.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("Failed to list goals by owner", "owner_id", ownerID.String(), "error", err)
		return nil, fmt.Errorf("failed to list goals by owner: %w", err)
	}
	defer rows.Close()

	return collectGoals(rows)
}

// ListNotCompleted retrieves every goal eligible for a status sweep
func (r *GoalRepository) ListNotCompleted(ctx context.Context) ([]*goal.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM savings_goals
		WHERE status <> $1
		ORDER BY created_at ASC
	`

	ctx, cancel := opContext(ctx, r.opTimeout)
	defer cancel()

	rows, err := r.querier.Query(ctx, query, goal.StatusCompleted)
	if err != nil {
		r.logger.Error("Failed to list goals for sweep", "error", err)
		return nil, fmt.Errorf("failed to list goals for sweep: %w", err)
	}
	defer rows.Close()

	return collectGoals(rows)
}

func collectGoals(rows pgx.Rows) ([]*goal.Goal, error) {
	var goals []*goal.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over goals: %w", err)
	}
	return goals, nil
}

// Update updates an existing goal in the database using optimistic locking
func (r *GoalRepository) Update(ctx context.Context, g *goal.Goal) error {
	query := `
		UPDATE savings_goals
		SET name = $1, description = $2, amount = $3, target_amount = $4, status = $5, target_date = $6, version = $7, updated_at = $8
		WHERE id = $9 AND version = $10
	`

	ctx, cancel := opContext(ctx, r.opTimeout)
	defer cancel()

	result, err := r.querier.Exec(ctx, query,
		g.Name,
		g.Description,
		g.Amount,
		g.TargetAmount,
		g.Status,
		g.TargetDate,
		g.Version,
		g.UpdatedAt,
		g.ID,
		g.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update goal", "id", g.ID.String(), "error", err)
		return fmt.Errorf("failed to update goal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return goal.ErrConcurrentModification{GoalID: g.ID}
	}

	return nil
}

// UpdateStatus writes only the status column, guarded by the version the
// caller read. A sweep that finds no transition issues no write at all.
func (r *GoalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status goal.Status, version int) error {
	query := `
		UPDATE savings_goals
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`

	ctx, cancel := opContext(ctx, r.opTimeout)
	defer cancel()

	result, err := r.querier.Exec(ctx, query, status, id, version)
	if err != nil {
		r.logger.Error("Failed to update goal status", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update goal status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return goal.ErrConcurrentModification{GoalID: id}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the goal and returns its
// current state. This should be used within a transaction so concurrent
// ledger operations on the same goal serialize around the balance check.
func (r *GoalRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM savings_goals
		WHERE id = $1
		FOR UPDATE
	`

	ctx, cancel := opContext(ctx, r.opTimeout)
	defer cancel()

	g, err := scanGoal(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goal.ErrGoalNotFound{GoalID: id}
		}
		r.logger.Error("Failed to lock goal for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock goal for update: %w", err)
	}

	return g, nil
}

// Delete removes a goal. Ledger entries and pending outbox rows cascade
// via foreign keys; the MongoDB history is kept as an audit trail.
func (r *GoalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM savings_goals
		WHERE id = $1
	`

	ctx, cancel := opContext(ctx, r.opTimeout)
	defer cancel()

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete goal", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return goal.ErrGoalNotFound{GoalID: id}
	}

	return nil
}
