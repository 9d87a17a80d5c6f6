package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nestegg/savings-ledger/internal/domain/ledger"
)

// Status defines message publishing states
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusProcessed       Status = "PROCESSED"
	StatusFailedToPublish Status = "FAILED_TO_PUBLISH"
)

// Message stores a committed ledger entry for reliable projection into
// the history read model. Rows are written in the same transaction as
// the ledger entry and drained by the poller.
type Message struct {
	ID            int64           `json:"id"`
	GoalID        uuid.UUID       `json:"goal_id"`
	EntryID       uuid.UUID       `json:"entry_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps a history record into a pending outbox message
func NewMessage(record *ledger.HistoryRecord) (*Message, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	return &Message{
		GoalID:    record.GoalID,
		EntryID:   record.EntryID,
		Payload:   payload,
		Status:    StatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = StatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = StatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// HistoryRecord extracts the projected ledger record from the payload
func (m *Message) HistoryRecord() (*ledger.HistoryRecord, error) {
	var record ledger.HistoryRecord
	if err := json.Unmarshal(m.Payload, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
