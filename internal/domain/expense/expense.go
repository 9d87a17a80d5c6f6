// Package expense holds the bookkeeping record the withdraw operation
// leaves for the expense-tracking side of the system. The expense row is
// written after the withdrawal commits; it is a side record, not part of
// the ledger's transactional unit.
package expense

import (
	"time"

	"github.com/google/uuid"
)

// CategoryWithdrawal tags expenses generated by savings withdrawals
const CategoryWithdrawal = "withdrawal"

// Expense is one expense row in Postgres, amounts in cents/minor units
type Expense struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	ExpenseDate time.Time `json:"expense_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewWithdrawalExpense builds the expense record for a goal withdrawal,
// tagged with the goal's name so the expense tracker can attribute it.
func NewWithdrawalExpense(ownerID uuid.UUID, goalName string, amount int64, expenseDate time.Time) *Expense {
	return &Expense{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Category:    CategoryWithdrawal,
		Description: "Withdrawal from savings goal: " + goalName,
		Amount:      amount,
		ExpenseDate: expenseDate,
		CreatedAt:   time.Now(),
	}
}
