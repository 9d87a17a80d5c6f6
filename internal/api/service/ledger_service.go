package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nestegg/savings-ledger/internal/domain/expense"
	"github.com/nestegg/savings-ledger/internal/domain/goal"
	"github.com/nestegg/savings-ledger/internal/domain/ledger"
	"github.com/nestegg/savings-ledger/internal/domain/outbox"
	"github.com/nestegg/savings-ledger/internal/platform/messaging/producers"
)

// ErrExpenseNotRecorded reports a withdrawal that committed while the
// follow-up expense record failed. The withdrawal stands; callers
// surface the partial success as a warning, not a failure.
type ErrExpenseNotRecorded struct {
	Goal  *goal.Goal
	Cause error
}

func (e ErrExpenseNotRecorded) Error() string {
	return "withdrawal applied but expense record failed for goal " + e.Goal.ID.String() + ": " + e.Cause.Error()
}

func (e ErrExpenseNotRecorded) Unwrap() error {
	return e.Cause
}

// LedgerServiceImpl implements the LedgerService interface
type LedgerServiceImpl struct {
	goalRepo    goal.Repository
	ledgerRepo  ledger.Repository
	expenseRepo expense.Repository
	outboxRepo  outbox.Repository
	historyRepo ledger.HistoryRepository
	txRunner    TxRunner
	publisher   producers.StatusEventPublisher
	logger      *slog.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(logger *slog.Logger, goalRepo goal.Repository, ledgerRepo ledger.Repository, expenseRepo expense.Repository, outboxRepo outbox.Repository, historyRepo ledger.HistoryRepository, txRunner TxRunner, publisher producers.StatusEventPublisher) LedgerService {
	return &LedgerServiceImpl{
		goalRepo:    goalRepo,
		ledgerRepo:  ledgerRepo,
		expenseRepo: expenseRepo,
		outboxRepo:  outboxRepo,
		historyRepo: historyRepo,
		txRunner:    txRunner,
		publisher:   publisher,
		logger:      logger,
	}
}

// Deposit adds funds to a goal. The balance change, ledger entry, and
// outbox projection commit in one transaction; either everything is
// recorded or nothing is.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, goalID uuid.UUID, amount int64, entryDate time.Time) (*goal.Goal, *ledger.Entry, error) {
	g, entry, previous, err := s.applyEntry(ctx, goalID, ledger.EntryTypeDeposit, amount, entryDate)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Deposit recorded",
		"goal_id", goalID.String(),
		"entry_id", entry.ID.String(),
		"amount", amount,
		"balance", g.Amount,
	)
	s.publishTransition(ctx, g, previous)
	return g, entry, nil
}

// Withdraw removes funds from a goal. The transactional unit is the
// same as Deposit; the expense record is written only after the commit,
// so its failure cannot take the withdrawal down with it.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, goalID uuid.UUID, amount int64, entryDate time.Time) (*goal.Goal, *ledger.Entry, error) {
	g, entry, previous, err := s.applyEntry(ctx, goalID, ledger.EntryTypeWithdrawal, amount, entryDate)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Withdrawal recorded",
		"goal_id", goalID.String(),
		"entry_id", entry.ID.String(),
		"amount", amount,
		"balance", g.Amount,
	)
	s.publishTransition(ctx, g, previous)

	exp := expense.NewWithdrawalExpense(g.OwnerID, g.Name, amount, entryDate)
	if err := s.expenseRepo.Create(ctx, exp); err != nil {
		s.logger.Error("Failed to record withdrawal expense",
			"goal_id", goalID.String(),
			"entry_id", entry.ID.String(),
			"amount", amount,
			"error", err,
		)
		return g, entry, ErrExpenseNotRecorded{Goal: g, Cause: err}
	}

	return g, entry, nil
}

// applyEntry runs the shared transactional core of a ledger operation:
// lock the goal, mutate the balance, append the entry, persist the goal,
// and stage the outbox projection.
func (s *LedgerServiceImpl) applyEntry(ctx context.Context, goalID uuid.UUID, entryType ledger.EntryType, amount int64, entryDate time.Time) (*goal.Goal, *ledger.Entry, goal.Status, error) {
	var g *goal.Goal
	var entry *ledger.Entry
	var previous goal.Status

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.goalRepo.WithTx(tx)

		locked, err := repo.LockForUpdate(ctx, goalID)
		if err != nil {
			return err
		}
		previous = locked.Status

		switch entryType {
		case ledger.EntryTypeDeposit:
			err = locked.Deposit(amount)
		case ledger.EntryTypeWithdrawal:
			err = locked.Withdraw(amount)
		default:
			err = goal.ErrInvalidAmount
		}
		if err != nil {
			return err
		}

		entry = ledger.NewEntry(goalID, entryType, amount, entryDate)
		if err := s.ledgerRepo.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}

		if err := repo.Update(ctx, locked); err != nil {
			return err
		}

		msg, err := outbox.NewMessage(newHistoryRecord(locked, entry))
		if err != nil {
			return err
		}
		if err := s.outboxRepo.WithTx(tx).Create(ctx, msg); err != nil {
			return err
		}

		g = locked
		return nil
	})
	if err != nil {
		return nil, nil, "", err
	}

	return g, entry, previous, nil
}

// GetHistory retrieves the paginated history read model for a goal.
// The goal must exist; its projected records may lag the ledger by the
// outbox polling interval.
func (s *LedgerServiceImpl) GetHistory(ctx context.Context, goalID uuid.UUID, page, perPage int) ([]*ledger.HistoryRecord, int64, error) {
	if _, err := s.goalRepo.GetByID(ctx, goalID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage

	records, err := s.historyRepo.GetByGoalID(ctx, goalID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.historyRepo.CountByGoalID(ctx, goalID)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (s *LedgerServiceImpl) publishTransition(ctx context.Context, g *goal.Goal, previous goal.Status) {
	if s.publisher == nil || g.Status == previous {
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

// newHistoryRecord projects a committed entry plus the goal state after
// it into the denormalized history shape.
func newHistoryRecord(g *goal.Goal, entry *ledger.Entry) *ledger.HistoryRecord {
	return &ledger.HistoryRecord{
		EntryID:    entry.ID,
		GoalID:     g.ID,
		OwnerID:    g.OwnerID,
		GoalName:   g.Name,
		Type:       entry.Type,
		Amount:     entry.Amount,
		Balance:    g.Amount,
		EntryDate:  entry.EntryDate,
		RecordedAt: time.Now().UTC(),
	}
}
