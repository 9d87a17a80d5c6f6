package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nestegg/savings-ledger/internal/api/service"
	"github.com/nestegg/savings-ledger/internal/domain/goal"
	"github.com/nestegg/savings-ledger/internal/domain/ledger"
)

// LedgerHandler handles HTTP requests for deposit, withdrawal, and
// history operations
type LedgerHandler struct {
	ledgerService service.LedgerService
	logger        *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(logger *slog.Logger, ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// Deposit records a deposit against a goal
func (h *LedgerHandler) Deposit(c *gin.Context) {
	id, ok := parseGoalID(c)
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	g, entry, err := h.ledgerService.Deposit(c.Request.Context(), id, req.Amount, entryDateOrNow(req.EntryDate))
	if err != nil {
		h.respondLedgerError(c, err, "Failed to record deposit")
		return
	}

	RespondCreated(c, mapOperationToResponse(g, entry))
}

// Withdraw records a withdrawal against a goal. A withdrawal that
// committed but failed to produce its expense record still succeeds,
// with a warning attached.
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	id, ok := parseGoalID(c)
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	g, entry, err := h.ledgerService.Withdraw(c.Request.Context(), id, req.Amount, entryDateOrNow(req.EntryDate))
	if err != nil {
		var partial service.ErrExpenseNotRecorded
		if errors.As(err, &partial) {
			RespondOKWithWarning(c, mapOperationToResponse(g, entry), "Withdrawal applied but the expense record could not be written")
			return
		}
		h.respondLedgerError(c, err, "Failed to record withdrawal")
		return
	}

	RespondCreated(c, mapOperationToResponse(g, entry))
}

// GetHistory retrieves the paginated history for a goal
func (h *LedgerHandler) GetHistory(c *gin.Context) {
	id, ok := parseGoalID(c)
	if !ok {
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	records, total, err := h.ledgerService.GetHistory(c.Request.Context(), id, params.Page, params.PerPage)
	if err != nil {
		h.respondLedgerError(c, err, "Failed to get goal history")
		return
	}

	response := HistoryListResponse{Entries: make([]HistoryRecordResponse, 0, len(records))}
	for _, record := range records {
		response.Entries = append(response.Entries, mapHistoryToResponse(record))
	}

	RespondWithPaginatedData(c, http.StatusOK, response, params.Page, params.PerPage, int(total))
}

// respondLedgerError maps domain errors from ledger operations onto
// HTTP statuses, falling back to a logged 500
func (h *LedgerHandler) respondLedgerError(c *gin.Context, err error, logMsg string) {
	if errors.Is(err, goal.ErrInvalidAmount) {
		RespondBadRequest(c, err.Error())
		return
	}
	var notFound goal.ErrGoalNotFound
	if errors.As(err, &notFound) {
		RespondNotFound(c, "Savings goal not found")
		return
	}
	var insufficient goal.ErrInsufficientFunds
	if errors.As(err, &insufficient) {
		RespondUnprocessableEntity(c, "INSUFFICIENT_FUNDS", insufficient.Error())
		return
	}
	var conflict goal.ErrConcurrentModification
	if errors.As(err, &conflict) {
		RespondConflict(c, "Goal was modified concurrently, retry the request")
		return
	}
	h.logger.Error(logMsg, "error", err)
	RespondInternalError(c)
}

func entryDateOrNow(date *time.Time) time.Time {
	if date != nil {
		return *date
	}
	return time.Now()
}

// mapOperationToResponse maps the outcome of a ledger operation to its DTO
func mapOperationToResponse(g *goal.Goal, entry *ledger.Entry) LedgerOperationResponse {
	return LedgerOperationResponse{
		Entry: EntryResponse{
			ID:        entry.ID.String(),
			GoalID:    entry.GoalID.String(),
			Type:      string(entry.Type),
			Amount:    entry.Amount,
			EntryDate: entry.EntryDate.Format(time.RFC3339),
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		},
		Goal: mapGoalToResponse(g),
	}
}

// mapHistoryToResponse maps a projected history record to its DTO
func mapHistoryToResponse(record *ledger.HistoryRecord) HistoryRecordResponse {
	return HistoryRecordResponse{
		EntryID:    record.EntryID.String(),
		GoalID:     record.GoalID.String(),
		OwnerID:    record.OwnerID.String(),
		GoalName:   record.GoalName,
		Type:       string(record.Type),
		Amount:     record.Amount,
		Balance:    record.Balance,
		EntryDate:  record.EntryDate.Format(time.RFC3339),
		RecordedAt: record.RecordedAt.Format(time.RFC3339),
	}
}
