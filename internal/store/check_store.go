package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/pagewatch-dev/pagewatch/internal/models"
)

// CheckStore is the gorm implementation of checker.CheckLogStore.
type CheckStore struct {
	db *gorm.DB
}

func NewCheckStore(db *gorm.DB) *CheckStore {
	return &CheckStore{db: db}
}

func (s *CheckStore) Insert(ctx context.Context, check *models.MonitorCheck) error {
	return s.db.WithContext(ctx).Create(check).Error
}

// RecentByMonitor returns the newest check rows for a monitor, for the
// check-history endpoint.
func (s *CheckStore) RecentByMonitor(ctx context.Context, monitorID uint, limit int) ([]models.MonitorCheck, error) {
	var checks []models.MonitorCheck

	err := s.db.WithContext(ctx).
		Where("monitor_id = ?", monitorID).
		Order("checked_at DESC").
		Limit(limit).
		Find(&checks).Error

	return checks, err
}
