package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/nestegg/savings-ledger/internal/domain/sweep"
)

// Scheduler gates sweep runs behind the shared rate-limit state. The
// state lives in storage, so any number of API and sweeper processes
// can call TryRun and at most one sweep executes per interval.
type Scheduler struct {
	sweeper     *Sweeper
	state       sweep.StateStore
	minInterval time.Duration
	logger      *slog.Logger
}

// NewScheduler creates a scheduler enforcing minInterval between sweeps
func NewScheduler(logger *slog.Logger, sweeper *Sweeper, state sweep.StateStore, minInterval time.Duration) *Scheduler {
	return &Scheduler{
		sweeper:     sweeper,
		state:       state,
		minInterval: minInterval,
		logger:      logger,
	}
}

// TryRun attempts a sweep. When the interval has not elapsed the call
// succeeds with a skipped result instead of failing.
func (s *Scheduler) TryRun(ctx context.Context) (Result, error) {
	acquired, err := s.state.TryAcquire(ctx, time.Now(), s.minInterval)
	if err != nil {
		return Result{}, err
	}
	if !acquired {
		lastRun, err := s.state.LastRun(ctx)
		if err != nil {
			s.logger.Warn("Failed to read last sweep time", "error", err)
		}
		s.logger.Debug("Sweep skipped, minimum interval has not elapsed", "last_run", lastRun)
		return Result{Skipped: true, LastRun: lastRun}, nil
	}

	return s.sweeper.Run(ctx)
}

// Start runs sweeps on a ticker until the context is canceled. The
// ticker fires at the minimum interval; the state store still arbitrates
// when several processes tick at once.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting sweep scheduler", "min_interval", s.minInterval.String())
	ticker := time.NewTicker(s.minInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweep scheduler stopping due to context cancellation.")
			return
		case <-ticker.C:
			if _, err := s.TryRun(ctx); err != nil {
				s.logger.Error("Scheduled sweep failed", "error", err)
			}
		}
	}
}
