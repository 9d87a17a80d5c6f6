package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nestegg/savings-ledger/internal/domain/sweep"
	"github.com/nestegg/savings-ledger/internal/platform/persistence"
)

// SweepStateRepository implements sweep.StateStore on the single-row
// sweep_state table. The conditional UPDATE makes TryAcquire atomic
// across any number of api and sweeper processes.
type SweepStateRepository struct {
	querier   persistence.Querier
	opTimeout time.Duration
	logger    *slog.Logger
}

// NewSweepStateRepository creates a new PostgreSQL sweep state store
func NewSweepStateRepository(logger *slog.Logger, db *persistence.PostgresDB) sweep.StateStore {
	return &SweepStateRepository{
		querier:   db.Pool(),
		opTimeout: db.OpTimeout(),
		logger:    logger,
	}
}

// TryAcquire claims the next sweep slot. The row is only updated when
// the previous run is at least minInterval in the past, so exactly one
// caller per window sees a rows-affected count of one.
func (r *SweepStateRepository) TryAcquire(ctx context.Context, now time.Time, minInterval time.Duration) (bool, error) {
	query := `
		UPDATE sweep_state
		SET last_run_at = $1
		WHERE id = 1 AND last_run_at <= $2
	`

	ctx, cancel := opContext(ctx, r.opTimeout)
	defer cancel()

	result, err := r.querier.Exec(ctx, query, now, now.Add(-minInterval))
	if err != nil {
		r.logger.Error("Failed to acquire sweep slot", "error", err)
		return false, fmt.Errorf("failed to acquire sweep slot: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// LastRun returns the timestamp of the most recent sweep claim
func (r *SweepStateRepository) LastRun(ctx context.Context) (time.Time, error) {
	query := `
		SELECT last_run_at
		FROM sweep_state
		WHERE id = 1
	`

	ctx, cancel := opContext(ctx, r.opTimeout)
	defer cancel()

	var lastRun time.Time
	err := r.querier.QueryRow(ctx, query).Scan(&lastRun)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, errors.New("sweep state row is missing, migrations not applied")
		}
		r.logger.Error("Failed to read sweep state", "error", err)
		return time.Time{}, fmt.Errorf("failed to read sweep state: %w", err)
	}

	return lastRun, nil
}
