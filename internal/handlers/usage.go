package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pagewatch-dev/pagewatch/internal/utils"
)

// GetUsage returns the authenticated user's current SMS usage counters
// and remaining allowances.
func GetUsage(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	usage, err := usageStore.GetByUser(ctx.Request.Context(), userID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No sends yet; report zero usage against the configured caps.
			ctx.JSON(http.StatusOK, gin.H{
				"hourly_count":     0,
				"daily_count":      0,
				"monthly_count":    0,
				"monthly_cost":     0.0,
				"max_per_hour":     cfg.SMS.MaxPerHour,
				"max_per_day":      cfg.SMS.MaxPerDay,
				"max_monthly_cost": cfg.SMS.MaxMonthlyCost,
			})
			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve usage"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"hourly_count":     usage.HourlyCount,
		"daily_count":      usage.DailyCount,
		"monthly_count":    usage.MonthlyCount,
		"monthly_cost":     usage.MonthlyCost,
		"max_per_hour":     cfg.SMS.MaxPerHour,
		"max_per_day":      cfg.SMS.MaxPerDay,
		"max_monthly_cost": cfg.SMS.MaxMonthlyCost,
	})
}

// GetCostStats is the operator-facing cost dashboard: system-wide
// totals, top spenders, threshold alerts and a month-end projection.
func GetCostStats(ctx *gin.Context) {
	summary, err := costMonitor.Stats(ctx.Request.Context())

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate cost statistics"})
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
