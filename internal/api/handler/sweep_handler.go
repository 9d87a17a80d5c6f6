package handler

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/nestegg/savings-ledger/internal/sweeper"
)

// SweepRunner triggers a rate-limited status sweep
type SweepRunner interface {
	TryRun(ctx context.Context) (sweeper.Result, error)
}

// SweepHandler handles on-demand status sweep requests
type SweepHandler struct {
	runner SweepRunner
	logger *slog.Logger
}

// NewSweepHandler creates a new sweep handler
func NewSweepHandler(logger *slog.Logger, runner SweepRunner) *SweepHandler {
	return &SweepHandler{
		runner: runner,
		logger: logger,
	}
}

// Run triggers a sweep. When the shared rate limit blocks the run the
// request still succeeds and reports the sweep as skipped.
func (h *SweepHandler) Run(c *gin.Context) {
	result, err := h.runner.TryRun(c.Request.Context())
	if err != nil {
		h.logger.Error("Status sweep failed", "error", err)
		RespondInternalError(c)
		return
	}

	resp := SweepResponse{
		Skipped:      result.Skipped,
		Examined:     result.Examined,
		Transitioned: result.Transitioned,
		Failed:       result.Failed,
	}
	if !result.LastRun.IsZero() {
		lastRun := result.LastRun
		resp.LastRun = &lastRun
	}

	RespondOK(c, resp)
}
