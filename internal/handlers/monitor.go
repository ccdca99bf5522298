package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pagewatch-dev/pagewatch/db"
	"github.com/pagewatch-dev/pagewatch/internal/models"
	"github.com/pagewatch-dev/pagewatch/internal/scheduler"
	"github.com/pagewatch-dev/pagewatch/internal/types"
	"github.com/pagewatch-dev/pagewatch/internal/utils"
)

type CreateMonitorRequest struct {
	Name        string                `json:"name" binding:"required"`
	URL         string                `json:"url" binding:"required"`
	Pattern     string                `json:"pattern" binding:"required"`
	PatternType string                `json:"pattern_type" binding:"required"` // "contains", "not_contains", "regex"
	Interval    int                   `json:"interval" binding:"required"`     // Interval in seconds
	Channels    []types.ChannelConfig `json:"channels" binding:"required"`
}

type UpdateMonitorRequest struct {
	Name        string                `json:"name" binding:"required"`
	URL         string                `json:"url" binding:"required"`
	Pattern     string                `json:"pattern" binding:"required"`
	PatternType string                `json:"pattern_type" binding:"required"`
	Interval    int                   `json:"interval" binding:"required"`
	IsActive    *bool                 `json:"is_active" binding:"required"`
	Channels    []types.ChannelConfig `json:"channels" binding:"required"`
}

type MonitorSummary struct {
	ID          uint                  `json:"id"`
	Name        string                `json:"name"`
	URL         string                `json:"url"`
	Pattern     string                `json:"pattern"`
	PatternType string                `json:"pattern_type"`
	Interval    int                   `json:"interval"`
	IsActive    bool                  `json:"is_active"`
	LastStatus  string                `json:"last_status"`
	LastChecked *time.Time            `json:"last_checked"`
	Channels    []types.ChannelConfig `json:"channels"`
}

func validateMonitorRequest(urlStr, patternType string, interval int, channels []types.ChannelConfig) (string, error) {
	cleanURL, err := utils.ValidateTargetURL(urlStr)

	if err != nil {
		return "", err
	}

	if !types.ValidPatternType(patternType) {
		return "", fmt.Errorf("unsupported pattern type: %s", patternType)
	}

	if interval < types.MinCheckInterval || interval > types.MaxCheckInterval {
		return "", fmt.Errorf("interval must be between %d and %d seconds", types.MinCheckInterval, types.MaxCheckInterval)
	}

	if err := types.ValidateChannels(channels); err != nil {
		return "", err
	}

	return cleanURL, nil
}

func CreateMonitor(ctx *gin.Context) {
	var req CreateMonitorRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cleanURL, err := validateMonitorRequest(req.URL, req.PatternType, req.Interval, req.Channels)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channelsJSON, err := json.Marshal(req.Channels)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channels format"})
		return
	}

	monitor := models.Monitor{
		UserID:      userID,
		Name:        req.Name,
		URL:         cleanURL,
		Pattern:     req.Pattern,
		PatternType: req.PatternType,
		Interval:    req.Interval,
		IsActive:    true,
		LastStatus:  types.StatusPending,
		Channels:    channelsJSON,
	}

	if err := db.DB.Create(&monitor).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create monitor"})
		return
	}

	scheduler.AddMonitor(monitor)
	ctx.JSON(http.StatusCreated, gin.H{"message": "Monitor created successfully", "monitor_id": monitor.ID})
}

func GetMonitors(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var monitors []models.Monitor

	if err := db.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&monitors).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve monitors"})
		return
	}

	summaries := make([]MonitorSummary, 0, len(monitors))

	for _, monitor := range monitors {
		channels, err := monitor.ChannelList()

		if err != nil {
			channels = nil
		}

		summaries = append(summaries, MonitorSummary{
			ID:          monitor.ID,
			Name:        monitor.Name,
			URL:         monitor.URL,
			Pattern:     monitor.Pattern,
			PatternType: monitor.PatternType,
			Interval:    monitor.Interval,
			IsActive:    monitor.IsActive,
			LastStatus:  monitor.LastStatus,
			LastChecked: monitor.LastChecked,
			Channels:    channels,
		})
	}

	ctx.JSON(http.StatusOK, summaries)
}

func UpdateMonitor(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	monitorID, err := utils.GetMonitorID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateMonitorRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var monitor models.Monitor

	if err := db.DB.Where("id = ? AND user_id = ?", monitorID, userID).First(&monitor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Monitor not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve monitor"})
		}
		return
	}

	cleanURL, err := validateMonitorRequest(req.URL, req.PatternType, req.Interval, req.Channels)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channelsJSON, err := json.Marshal(req.Channels)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channels format"})
		return
	}

	monitor.Name = req.Name
	monitor.URL = cleanURL
	monitor.Pattern = req.Pattern
	monitor.PatternType = req.PatternType
	monitor.Interval = req.Interval
	monitor.IsActive = *req.IsActive
	monitor.Channels = channelsJSON

	if err := db.DB.Save(&monitor).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update monitor"})
		return
	}

	if monitor.IsActive {
		scheduler.UpdateMonitor(monitor)
	} else {
		scheduler.RemoveMonitor(monitor.ID)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Monitor updated successfully", "monitor_id": monitor.ID})
}

func DeleteMonitor(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	monitorID, err := utils.GetMonitorID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var monitor models.Monitor

	if err := db.DB.Where("id = ? AND user_id = ?", monitorID, userID).First(&monitor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Monitor not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve monitor"})
		}
		return
	}

	if err := db.DB.Delete(&monitor).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete monitor"})
		return
	}

	scheduler.RemoveMonitor(monitor.ID)

	ctx.Status(http.StatusNoContent)
}

func GetMonitorChecks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	monitorID, err := utils.GetMonitorID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var monitor models.Monitor

	if err := db.DB.Where("id = ? AND user_id = ?", monitorID, userID).First(&monitor).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Monitor not found"})
		return
	}

	checks, err := checkStore.RecentByMonitor(ctx.Request.Context(), monitor.ID, 50)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get checks"})
		return
	}

	ctx.JSON(http.StatusOK, checks)
}
