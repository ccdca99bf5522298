package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/pagewatch-dev/pagewatch/internal/models"
)

// RecordStore is the gorm implementation of notifier.RecordStore plus the
// read/update paths used by the history endpoint and the delivery-status
// webhook.
type RecordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) Insert(ctx context.Context, record *models.NotificationRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

// RecentByUser returns the user's newest notification records.
func (s *RecordStore) RecentByUser(ctx context.Context, userID uint, limit int) ([]models.NotificationRecord, error) {
	var records []models.NotificationRecord

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error

	return records, err
}

// UpdateByExternalID applies an asynchronous delivery-status update,
// matching on the provider message SID. Returns the number of rows
// touched so the webhook can distinguish unknown SIDs.
func (s *RecordStore) UpdateByExternalID(ctx context.Context, externalID, status, errorMessage string) (int64, error) {
	updates := map[string]interface{}{"status": status}

	if errorMessage != "" {
		updates["error_message"] = errorMessage
	}

	result := s.db.WithContext(ctx).
		Model(&models.NotificationRecord{}).
		Where("external_id = ?", externalID).
		Updates(updates)

	return result.RowsAffected, result.Error
}
