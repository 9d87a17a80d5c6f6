package goal

import (
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrEmptyName      = errors.New("goal name cannot be empty")
	ErrInvalidStatus  = errors.New("invalid goal status")
)

// Goal represents a savings goal owned by a single user. Amount and
// TargetAmount are stored in cents/minor units. A TargetAmount of zero
// means the goal has no target. Amount is only ever mutated through
// Deposit and Withdraw so the ledger stays the source of truth.
type Goal struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Amount       int64      `json:"amount"`
	TargetAmount int64      `json:"target_amount"`
	Status       Status     `json:"status"`
	TargetDate   *time.Time `json:"target_date,omitempty"`
	Version      int        `json:"version"` // For optimistic locking
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewGoal creates a new savings goal with its status derived from the
// initial amount, target, and deadline.
func NewGoal(ownerID uuid.UUID, name, description string, targetAmount, initialAmount int64, targetDate *time.Time) (*Goal, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if initialAmount < 0 {
		return nil, ErrNegativeAmount
	}
	if targetAmount < 0 {
		return nil, ErrNegativeAmount
	}

	now := time.Now()
	return &Goal{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Name:         name,
		Description:  description,
		Amount:       initialAmount,
		TargetAmount: targetAmount,
		Status:       DeriveStatus(initialAmount, targetAmount, targetDate, now, now),
		TargetDate:   targetDate,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Deposit adds the specified amount to the goal balance and re-derives
// the status from the new balance.
func (g *Goal) Deposit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	g.Amount += amount
	g.refresh(time.Now())
	return nil
}

// Withdraw subtracts the specified amount from the goal balance. The
// balance must never go negative; an overdraw is rejected before any
// state changes.
func (g *Goal) Withdraw(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !g.CanWithdraw(amount) {
		return ErrInsufficientFunds{GoalID: g.ID, Requested: amount, Available: g.Amount}
	}

	g.Amount -= amount
	g.refresh(time.Now())
	return nil
}

// SetStatus applies a manual status override, bypassing derivation.
// This is the only path that persists a status the derivation rules
// would not produce.
func (g *Goal) SetStatus(status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	g.Status = status
	g.UpdatedAt = time.Now()
	g.Version++
	return nil
}

// UpdateDetails replaces the mutable metadata of the goal. Nil pointers
// leave the corresponding field unchanged; clearDate removes the
// deadline. The status is re-derived since target and deadline feed the
// derivation rules.
func (g *Goal) UpdateDetails(name, description *string, targetAmount *int64, targetDate *time.Time, clearDate bool) error {
	if name != nil {
		if *name == "" {
			return ErrEmptyName
		}
		g.Name = *name
	}
	if description != nil {
		g.Description = *description
	}
	if targetAmount != nil {
		if *targetAmount < 0 {
			return ErrNegativeAmount
		}
		g.TargetAmount = *targetAmount
	}
	if clearDate {
		g.TargetDate = nil
	} else if targetDate != nil {
		d := *targetDate
		g.TargetDate = &d
	}

	g.refresh(time.Now())
	return nil
}

// CanWithdraw checks whether the goal holds sufficient funds for a withdrawal
func (g *Goal) CanWithdraw(amount int64) bool {
	return g.Amount >= amount
}

// refresh re-derives the status and bumps version bookkeeping after a mutation
func (g *Goal) refresh(now time.Time) {
	g.Status = DeriveStatus(g.Amount, g.TargetAmount, g.TargetDate, g.CreatedAt, now)
	g.UpdatedAt = now
	g.Version++
}

// ErrInsufficientFunds indicates a withdrawal exceeding the current balance
type ErrInsufficientFunds struct {
	GoalID    uuid.UUID
	Requested int64
	Available int64
}

func (e ErrInsufficientFunds) Error() string {
	return "insufficient funds for goal " + e.GoalID.String() +
		": requested " + strconv.FormatInt(e.Requested, 10) +
		", available " + strconv.FormatInt(e.Available, 10)
}

// Is implements the errors.Is interface for ErrInsufficientFunds
func (e ErrInsufficientFunds) Is(target error) bool {
	t, ok := target.(ErrInsufficientFunds)
	if !ok {
		return false
	}
	if t.GoalID == uuid.Nil {
		return true
	}
	return e.GoalID == t.GoalID
}
