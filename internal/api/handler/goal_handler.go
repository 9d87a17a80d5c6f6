package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nestegg/savings-ledger/internal/api/service"
	"github.com/nestegg/savings-ledger/internal/domain/goal"
)

// GoalHandler handles HTTP requests for savings goal operations
type GoalHandler struct {
	goalService service.GoalService
	logger      *slog.Logger
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(logger *slog.Logger, goalService service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
		logger:      logger,
	}
}

// Create handles creation of a new savings goal
func (h *GoalHandler) Create(c *gin.Context) {
	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	g, err := h.goalService.CreateGoal(c.Request.Context(), ownerID, req.Name, req.Description, req.TargetAmount, req.InitialAmount, req.TargetDate)
	if err != nil {
		if isValidationError(err) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create goal", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapGoalToResponse(g))
}

// GetByID retrieves a goal by its ID, returning 404 if not found
func (h *GoalHandler) GetByID(c *gin.Context) {
	id, ok := parseGoalID(c)
	if !ok {
		return
	}

	g, err := h.goalService.GetGoalByID(c.Request.Context(), id)
	if err != nil {
		h.respondGoalError(c, id, err, "Failed to get goal")
		return
	}

	RespondOK(c, mapGoalToResponse(g))
}

// List retrieves all goals for the owner given in the query string
func (h *GoalHandler) List(c *gin.Context) {
	ownerParam := c.Query("owner_id")
	ownerID, err := uuid.Parse(ownerParam)
	if err != nil {
		h.logger.Error("Invalid owner ID", "owner_id", ownerParam, "error", err)
		RespondBadRequest(c, "Invalid or missing owner_id query parameter")
		return
	}

	goals, err := h.goalService.ListGoalsByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("Failed to list goals", "owner_id", ownerParam, "error", err)
		RespondInternalError(c)
		return
	}

	response := GoalListResponse{Goals: make([]GoalResponse, 0, len(goals))}
	for _, g := range goals {
		response.Goals = append(response.Goals, mapGoalToResponse(g))
	}

	RespondOK(c, response)
}

// Update applies a partial details update to a goal
func (h *GoalHandler) Update(c *gin.Context) {
	id, ok := parseGoalID(c)
	if !ok {
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	g, err := h.goalService.UpdateGoal(c.Request.Context(), id, service.GoalUpdate{
		Name:            req.Name,
		Description:     req.Description,
		TargetAmount:    req.TargetAmount,
		TargetDate:      req.TargetDate,
		ClearTargetDate: req.ClearTargetDate,
	})
	if err != nil {
		if isValidationError(err) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.respondGoalError(c, id, err, "Failed to update goal")
		return
	}

	RespondOK(c, mapGoalToResponse(g))
}

// SetStatus applies a manual status override to a goal
func (h *GoalHandler) SetStatus(c *gin.Context) {
	id, ok := parseGoalID(c)
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	status, err := goal.ParseStatus(req.Status)
	if err != nil {
		RespondBadRequest(c, "Invalid status: "+req.Status)
		return
	}

	g, err := h.goalService.SetGoalStatus(c.Request.Context(), id, status)
	if err != nil {
		h.respondGoalError(c, id, err, "Failed to set goal status")
		return
	}

	RespondOK(c, mapGoalToResponse(g))
}

// Delete removes a goal and its ledger entries
func (h *GoalHandler) Delete(c *gin.Context) {
	id, ok := parseGoalID(c)
	if !ok {
		return
	}

	if err := h.goalService.DeleteGoal(c.Request.Context(), id); err != nil {
		h.respondGoalError(c, id, err, "Failed to delete goal")
		return
	}

	RespondNoContent(c)
}

// respondGoalError maps domain errors common to goal operations onto
// HTTP statuses, falling back to a logged 500
func (h *GoalHandler) respondGoalError(c *gin.Context, id uuid.UUID, err error, logMsg string) {
	var notFound goal.ErrGoalNotFound
	if errors.As(err, &notFound) {
		RespondNotFound(c, "Savings goal not found")
		return
	}
	var conflict goal.ErrConcurrentModification
	if errors.As(err, &conflict) {
		RespondConflict(c, "Goal was modified concurrently, retry the request")
		return
	}
	h.logger.Error(logMsg, "goal_id", id.String(), "error", err)
	RespondInternalError(c)
}

// parseGoalID extracts and validates the goal ID path parameter,
// responding 400 itself when invalid
func parseGoalID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid goal ID")
		return uuid.Nil, false
	}
	return id, true
}

// isValidationError reports whether err is one of the domain input
// validation sentinels
func isValidationError(err error) bool {
	return errors.Is(err, goal.ErrEmptyName) ||
		errors.Is(err, goal.ErrInvalidAmount) ||
		errors.Is(err, goal.ErrNegativeAmount) ||
		errors.Is(err, goal.ErrInvalidStatus)
}

// mapGoalToResponse maps a goal entity to a goal response DTO
func mapGoalToResponse(g *goal.Goal) GoalResponse {
	response := GoalResponse{
		ID:           g.ID.String(),
		OwnerID:      g.OwnerID.String(),
		Name:         g.Name,
		Description:  g.Description,
		Amount:       g.Amount,
		TargetAmount: g.TargetAmount,
		Status:       string(g.Status),
		CreatedAt:    g.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    g.UpdatedAt.Format(time.RFC3339),
	}
	if g.TargetDate != nil {
		response.TargetDate = g.TargetDate.Format(time.RFC3339)
	}
	return response
}
