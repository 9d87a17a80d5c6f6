package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nestegg/savings-ledger/internal/api/handler"
	"github.com/nestegg/savings-ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	goalHandler *handler.GoalHandler,
	ledgerHandler *handler.LedgerHandler,
	sweepHandler *handler.SweepHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Goal operations
		goals := v1.Group("/goals")
		{
			goals.POST("", goalHandler.Create)
			goals.GET("", goalHandler.List)
			goals.GET("/:id", goalHandler.GetByID)
			goals.PATCH("/:id", goalHandler.Update)
			goals.PUT("/:id/status", goalHandler.SetStatus)
			goals.DELETE("/:id", goalHandler.Delete)

			// Ledger operations
			goals.POST("/:id/deposits", ledgerHandler.Deposit)
			goals.POST("/:id/withdrawals", ledgerHandler.Withdraw)
			goals.GET("/:id/entries", ledgerHandler.GetHistory)
		}

		// Status sweep
		v1.POST("/sweep", sweepHandler.Run)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
