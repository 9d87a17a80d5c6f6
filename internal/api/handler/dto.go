package handler

import "time"

// CreateGoalRequest represents a request to create a new savings goal.
// Amounts are in cents/minor units; a zero target means no target.
type CreateGoalRequest struct {
	OwnerID       string     `json:"owner_id" binding:"required,uuid"`
	Name          string     `json:"name" binding:"required"`
	Description   string     `json:"description"`
	TargetAmount  int64      `json:"target_amount" binding:"min=0"`
	InitialAmount int64      `json:"initial_amount" binding:"min=0"`
	TargetDate    *time.Time `json:"target_date,omitempty"`
}

// UpdateGoalRequest represents a partial update of a goal's details.
// Absent fields are left unchanged; clear_target_date removes the deadline.
type UpdateGoalRequest struct {
	Name            *string    `json:"name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	TargetAmount    *int64     `json:"target_amount,omitempty" binding:"omitempty,min=0"`
	TargetDate      *time.Time `json:"target_date,omitempty"`
	ClearTargetDate bool       `json:"clear_target_date,omitempty"`
}

// SetStatusRequest represents a manual status override
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active completed atRisk"`
}

// CreateEntryRequest represents a deposit or withdrawal request.
// EntryDate defaults to the current time when absent.
type CreateEntryRequest struct {
	Amount    int64      `json:"amount" binding:"required,gt=0"`
	EntryDate *time.Time `json:"entry_date,omitempty"`
}

// GoalResponse represents a savings goal in API responses
type GoalResponse struct {
	ID           string `json:"id"`
	OwnerID      string `json:"owner_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Amount       int64  `json:"amount"`
	TargetAmount int64  `json:"target_amount"`
	Status       string `json:"status"`
	TargetDate   string `json:"target_date,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// GoalListResponse represents a list of goals in API responses
type GoalListResponse struct {
	Goals []GoalResponse `json:"goals"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID        string `json:"id"`
	GoalID    string `json:"goal_id"`
	Type      string `json:"type"`
	Amount    int64  `json:"amount"`
	EntryDate string `json:"entry_date"`
	CreatedAt string `json:"created_at"`
}

// LedgerOperationResponse couples the recorded entry with the goal
// state after the operation applied
type LedgerOperationResponse struct {
	Entry EntryResponse `json:"entry"`
	Goal  GoalResponse  `json:"goal"`
}

// HistoryRecordResponse represents a projected history record in API responses
type HistoryRecordResponse struct {
	EntryID    string `json:"entry_id"`
	GoalID     string `json:"goal_id"`
	OwnerID    string `json:"owner_id"`
	GoalName   string `json:"goal_name"`
	Type       string `json:"type"`
	Amount     int64  `json:"amount"`
	Balance    int64  `json:"balance"`
	EntryDate  string `json:"entry_date"`
	RecordedAt string `json:"recorded_at"`
}

// HistoryListResponse represents a list of history records in API responses
type HistoryListResponse struct {
	Entries []HistoryRecordResponse `json:"entries"`
}

// SweepResponse reports the outcome of a sweep request. LastRun is only
// present on skipped sweeps and tells the caller when the previous sweep
// claimed the rate-limit window.
type SweepResponse struct {
	Skipped      bool       `json:"skipped"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	Examined     int        `json:"examined"`
	Transitioned int        `json:"transitioned"`
	Failed       int        `json:"failed"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
