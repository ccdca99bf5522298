package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pagewatch-dev/pagewatch/internal/checker"
)

// TriggerCheckRequest is the exact shape the external scheduler posts.
type TriggerCheckRequest struct {
	MonitorID uint `json:"monitor_id" binding:"required"`
	UserID    uint `json:"user_id" binding:"required"`
}

// TriggerCheck is the scheduler-facing entry point: it runs one check
// for the addressed monitor and reports the check's own outcome,
// separate from any notification failures inside it.
func TriggerCheck(ctx *gin.Context) {
	var req TriggerCheckRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID := uuid.NewString()

	outcome, err := check.RunCheck(ctx.Request.Context(), req.MonitorID, req.UserID)

	if err != nil {
		switch {
		case errors.Is(err, checker.ErrMonitorNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Monitor not found"})
		case errors.Is(err, checker.ErrMonitorInactive):
			ctx.JSON(http.StatusConflict, gin.H{"success": false, "error": "Monitor is not active"})
		default:
			log.Printf("Check %s for monitor %d failed: %v", requestID, req.MonitorID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Check failed"})
		}
		return
	}

	log.Printf("Check %s for monitor %d completed: %s in %dms (notified=%t)",
		requestID, req.MonitorID, outcome.Status, outcome.ResponseTime, outcome.Notified)

	ctx.JSON(http.StatusOK, outcome)
}
