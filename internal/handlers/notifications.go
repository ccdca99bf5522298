package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pagewatch-dev/pagewatch/internal/utils"
)

// GetNotifications returns the authenticated user's notification history,
// newest first.
func GetNotifications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	records, err := recordStore.RecentByUser(ctx.Request.Context(), userID, 100)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	ctx.JSON(http.StatusOK, records)
}
