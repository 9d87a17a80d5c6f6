// Package sweeper re-derives goal statuses in bulk. A sweep walks every
// goal that is not completed, recomputes its status against the current
// time, and persists only the goals whose status actually changed.
package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/nestegg/savings-ledger/internal/domain/goal"
	"github.com/nestegg/savings-ledger/internal/platform/messaging/producers"
)

// Result summarizes one sweep pass. LastRun is populated on skipped
// results so callers can tell when the window reopens.
type Result struct {
	Skipped      bool
	LastRun      time.Time
	Examined     int
	Transitioned int
	Failed       int
}

// Sweeper runs status sweeps over a worker pool
type Sweeper struct {
	goalRepo  goal.Repository
	publisher producers.StatusEventPublisher
	pool      *ants.Pool
	logger    *slog.Logger
}

// NewSweeper creates a sweeper with a worker pool of the given size
func NewSweeper(logger *slog.Logger, goalRepo goal.Repository, publisher producers.StatusEventPublisher, poolSize int) (*Sweeper, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &Sweeper{
		goalRepo:  goalRepo,
		publisher: publisher,
		pool:      pool,
		logger:    logger,
	}, nil
}

// Run sweeps all non-completed goals once. Each goal is processed in
// isolation: one failing goal never aborts the pass. A version conflict
// means a ledger operation already refreshed the goal, so it is left
// alone rather than retried.
func (s *Sweeper) Run(ctx context.Context) (Result, error) {
	goals, err := s.goalRepo.ListNotCompleted(ctx)
	if err != nil {
		return Result{}, err
	}

	now := time.Now()
	var transitioned, failed atomic.Int64
	var wg sync.WaitGroup

	for _, g := range goals {
		g := g
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			switch s.sweepGoal(ctx, g, now) {
			case sweepTransitioned:
				transitioned.Add(1)
			case sweepFailed:
				failed.Add(1)
			}
		})
		if err != nil {
			wg.Done()
			failed.Add(1)
			s.logger.Error("Failed to submit goal to sweep pool", "goal_id", g.ID.String(), "error", err)
		}
	}
	wg.Wait()

	result := Result{
		Examined:     len(goals),
		Transitioned: int(transitioned.Load()),
		Failed:       int(failed.Load()),
	}

	s.logger.Info("Status sweep completed",
		"examined", result.Examined,
		"transitioned", result.Transitioned,
		"failed", result.Failed,
	)
	return result, nil
}

type sweepOutcome int

const (
	sweepUnchanged sweepOutcome = iota
	sweepTransitioned
	sweepFailed
)

// sweepGoal re-derives one goal's status and persists it when changed.
// Unchanged goals cost no write, which is what makes back-to-back
// sweeps idempotent.
func (s *Sweeper) sweepGoal(ctx context.Context, g *goal.Goal, now time.Time) sweepOutcome {
	derived := goal.DeriveStatus(g.Amount, g.TargetAmount, g.TargetDate, g.CreatedAt, now)
	if derived == g.Status {
		return sweepUnchanged
	}

	err := s.goalRepo.UpdateStatus(ctx, g.ID, derived, g.Version)
	if err != nil {
		if errors.Is(err, goal.ErrConcurrentModification{}) {
			s.logger.Debug("Goal changed during sweep, skipping", "goal_id", g.ID.String())
			return sweepUnchanged
		}
		if errors.Is(err, goal.ErrGoalNotFound{}) {
			s.logger.Debug("Goal deleted during sweep, skipping", "goal_id", g.ID.String())
			return sweepUnchanged
		}
		s.logger.Error("Failed to update goal status during sweep",
			"goal_id", g.ID.String(),
			"derived", string(derived),
			"error", err,
		)
		return sweepFailed
	}

	previous := g.Status
	g.Status = derived
	s.logger.Info("Goal status transitioned",
		"goal_id", g.ID.String(),
		"previous", string(previous),
		"current", string(derived),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, goal.NewStatusChangedEvent(g, previous)); err != nil {
			s.logger.Error("Failed to publish sweep status transition", "goal_id", g.ID.String(), "error", err)
		}
	}
	return sweepTransitioned
}

// Shutdown releases the worker pool
func (s *Sweeper) Shutdown() {
	s.logger.Info("Shutting down sweep worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}
