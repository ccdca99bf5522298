package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pagewatch-dev/pagewatch/internal/checker"
	"github.com/pagewatch-dev/pagewatch/internal/models"
)

// MonitorStore is the gorm implementation of checker.MonitorStore.
type MonitorStore struct {
	db *gorm.DB
}

func NewMonitorStore(db *gorm.DB) *MonitorStore {
	return &MonitorStore{db: db}
}

func (s *MonitorStore) GetOwned(ctx context.Context, monitorID, userID uint) (*models.Monitor, error) {
	var monitor models.Monitor

	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", monitorID, userID).
		First(&monitor).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, checker.ErrMonitorNotFound
		}
		return nil, err
	}

	return &monitor, nil
}

// UpdateStatus writes last_status and last_checked unconditionally;
// concurrent checks of the same monitor resolve last-write-wins.
func (s *MonitorStore) UpdateStatus(ctx context.Context, monitorID uint, status string, checkedAt time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.Monitor{}).
		Where("id = ?", monitorID).
		Updates(map[string]interface{}{
			"last_status":  status,
			"last_checked": checkedAt,
		}).Error
}
