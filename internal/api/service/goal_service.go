package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nestegg/savings-ledger/internal/domain/goal"
	"github.com/nestegg/savings-ledger/internal/domain/ledger"
	"github.com/nestegg/savings-ledger/internal/domain/outbox"
	"github.com/nestegg/savings-ledger/internal/platform/messaging/producers"
)

// GoalServiceImpl implements the GoalService interface
type GoalServiceImpl struct {
	goalRepo   goal.Repository
	ledgerRepo ledger.Repository
	outboxRepo outbox.Repository
	txRunner   TxRunner
	publisher  producers.StatusEventPublisher
	logger     *slog.Logger
}

// NewGoalService creates a new goal service
func NewGoalService(logger *slog.Logger, goalRepo goal.Repository, ledgerRepo ledger.Repository, outboxRepo outbox.Repository, txRunner TxRunner, publisher producers.StatusEventPublisher) GoalService {
	return &GoalServiceImpl{
		goalRepo:   goalRepo,
		ledgerRepo: ledgerRepo,
		outboxRepo: outboxRepo,
		txRunner:   txRunner,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateGoal creates a new savings goal. A positive initial amount is
// booked as the goal's first deposit so the ledger accounts for every
// cent the goal ever holds.
func (s *GoalServiceImpl) CreateGoal(ctx context.Context, ownerID uuid.UUID, name, description string, targetAmount, initialAmount int64, targetDate *time.Time) (*goal.Goal, error) {
	g, err := goal.NewGoal(ownerID, name, description, targetAmount, initialAmount, targetDate)
	if err != nil {
		return nil, err
	}

	if initialAmount == 0 {
		if err := s.goalRepo.Create(ctx, g); err != nil {
			return nil, err
		}
		return g, nil
	}

	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.goalRepo.WithTx(tx).Create(ctx, g); err != nil {
			return err
		}

		entry := ledger.NewEntry(g.ID, ledger.EntryTypeDeposit, initialAmount, g.CreatedAt)
		if err := s.ledgerRepo.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}

		msg, err := outbox.NewMessage(newHistoryRecord(g, entry))
		if err != nil {
			return err
		}
		return s.outboxRepo.WithTx(tx).Create(ctx, msg)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Savings goal created",
		"goal_id", g.ID.String(),
		"owner_id", ownerID.String(),
		"target_amount", targetAmount,
		"initial_amount", initialAmount,
	)
	return g, nil
}

// GetGoalByID retrieves a goal by its ID, returns ErrGoalNotFound if not found
func (s *GoalServiceImpl) GetGoalByID(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	return s.goalRepo.GetByID(ctx, id)
}

// ListGoalsByOwner retrieves all goals belonging to an owner
func (s *GoalServiceImpl) ListGoalsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*goal.Goal, error) {
	return s.goalRepo.ListByOwner(ctx, ownerID)
}

// UpdateGoal applies a details update under a row lock. Changing the
// target or deadline can flip the derived status, so a transition event
// is published when that happens.
func (s *GoalServiceImpl) UpdateGoal(ctx context.Context, id uuid.UUID, update GoalUpdate) (*goal.Goal, error) {
	var updated *goal.Goal
	var previous goal.Status

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.goalRepo.WithTx(tx)

		g, err := repo.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		previous = g.Status

		if err := g.UpdateDetails(update.Name, update.Description, update.TargetAmount, update.TargetDate, update.ClearTargetDate); err != nil {
			return err
		}

		if err := repo.Update(ctx, g); err != nil {
			return err
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishTransition(ctx, updated, previous)
	return updated, nil
}

// SetGoalStatus applies a manual status override
func (s *GoalServiceImpl) SetGoalStatus(ctx context.Context, id uuid.UUID, status goal.Status) (*goal.Goal, error) {
	var updated *goal.Goal
	var previous goal.Status

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.goalRepo.WithTx(tx)

		g, err := repo.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		previous = g.Status

		if err := g.SetStatus(status); err != nil {
			return err
		}

		if err := repo.Update(ctx, g); err != nil {
			return err
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Goal status overridden",
		"goal_id", id.String(),
		"previous", string(previous),
		"current", string(status),
	)
	s.publishTransition(ctx, updated, previous)
	return updated, nil
}

// DeleteGoal removes a goal; its ledger entries cascade with it. The
// MongoDB history projection is kept as an audit trail.
func (s *GoalServiceImpl) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	if err := s.goalRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Savings goal deleted", "goal_id", id.String())
	return nil
}

// publishTransition emits a status event when the status actually
// changed. Publish failures are logged, never surfaced: the state change
// is already committed.
func (s *GoalServiceImpl) publishTransition(ctx context.Context, g *goal.Goal, previous goal.Status) {
	if s.publisher == nil || g == nil || g.Status == previous {
		return
	}

	event := goal.NewStatusChangedEvent(g, previous)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish status transition",
			"goal_id", g.ID.String(),
			"previous", string(previous),
			"current", string(g.Status),
			"error", err,
		)
	}
}
