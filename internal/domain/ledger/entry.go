package ledger

import (
	"time"

	"github.com/google/uuid"
)

// EntryType defines the two ledger operations
type EntryType string

const (
	EntryTypeDeposit    EntryType = "deposit"
	EntryTypeWithdrawal EntryType = "withdrawal"
)

// Entry is one append-only ledger row for a savings goal. Amount is
// always a positive magnitude in cents/minor units; the type carries the
// sign. Entries are never mutated or deleted while their goal exists,
// so the sum of deposits minus withdrawals always equals the goal
// balance.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	GoalID    uuid.UUID `json:"goal_id"`
	Type      EntryType `json:"type"`
	Amount    int64     `json:"amount"`
	EntryDate time.Time `json:"entry_date"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEntry creates a ledger entry for a single deposit or withdrawal
func NewEntry(goalID uuid.UUID, entryType EntryType, amount int64, entryDate time.Time) *Entry {
	return &Entry{
		ID:        uuid.New(),
		GoalID:    goalID,
		Type:      entryType,
		Amount:    amount,
		EntryDate: entryDate,
		CreatedAt: time.Now(),
	}
}
