package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pagewatch-dev/pagewatch/internal/models"
	"github.com/pagewatch-dev/pagewatch/internal/ratelimit"
)

// UsageStore is the gorm implementation of ratelimit.UsageStore and
// costmon.UsageReader.
type UsageStore struct {
	db *gorm.DB
}

func NewUsageStore(db *gorm.DB) *UsageStore {
	return &UsageStore{db: db}
}

// Ensure returns the user's usage row, creating an all-zero row with
// current window markers on first use. The create ignores conflicts so
// two concurrent first sends cannot race into duplicates.
func (s *UsageStore) Ensure(ctx context.Context, userID uint, now time.Time) (*models.SmsUsage, error) {
	var usage models.SmsUsage

	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&usage).Error

	if err == nil {
		return &usage, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := models.SmsUsage{
		UserID:         userID,
		LastResetHour:  ratelimit.HourStart(now),
		LastResetDay:   ratelimit.DayStart(now),
		LastResetMonth: ratelimit.MonthStart(now),
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&fresh).Error; err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Where("user_id = ?", userID).First(&usage).Error

	if err != nil {
		return nil, err
	}

	return &usage, nil
}

// ResetHourWindow zeroes the hourly counter if, and only if, the stored
// marker still predates the boundary, so concurrent rollovers and
// replays are harmless.
func (s *UsageStore) ResetHourWindow(ctx context.Context, userID uint, boundary time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.SmsUsage{}).
		Where("user_id = ? AND last_reset_hour < ?", userID, boundary).
		Updates(map[string]interface{}{
			"hourly_count":    0,
			"last_reset_hour": boundary,
		}).Error
}

func (s *UsageStore) ResetDayWindow(ctx context.Context, userID uint, boundary time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.SmsUsage{}).
		Where("user_id = ? AND last_reset_day < ?", userID, boundary).
		Updates(map[string]interface{}{
			"daily_count":    0,
			"last_reset_day": boundary,
		}).Error
}

func (s *UsageStore) ResetMonthWindow(ctx context.Context, userID uint, boundary time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.SmsUsage{}).
		Where("user_id = ? AND last_reset_month < ?", userID, boundary).
		Updates(map[string]interface{}{
			"monthly_count":    0,
			"monthly_cost":     0,
			"last_reset_month": boundary,
		}).Error
}

// Increment charges one sent message in a single atomic upsert. The
// column arithmetic runs inside the database, so concurrent sends for
// the same user never double- or under-count.
func (s *UsageStore) Increment(ctx context.Context, userID uint, unitCost float64) error {
	now := time.Now()

	usage := models.SmsUsage{
		UserID:         userID,
		HourlyCount:    1,
		DailyCount:     1,
		MonthlyCount:   1,
		MonthlyCost:    unitCost,
		LastResetHour:  ratelimit.HourStart(now),
		LastResetDay:   ratelimit.DayStart(now),
		LastResetMonth: ratelimit.MonthStart(now),
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"hourly_count":  gorm.Expr("sms_usages.hourly_count + 1"),
				"daily_count":   gorm.Expr("sms_usages.daily_count + 1"),
				"monthly_count": gorm.Expr("sms_usages.monthly_count + 1"),
				"monthly_cost":  gorm.Expr("sms_usages.monthly_cost + ?", unitCost),
				"updated_at":    now,
			}),
		}).
		Create(&usage).Error
}

// GetByUser returns the usage row for the user-facing usage endpoint.
func (s *UsageStore) GetByUser(ctx context.Context, userID uint) (*models.SmsUsage, error) {
	var usage models.SmsUsage

	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&usage).Error

	if err != nil {
		return nil, err
	}

	return &usage, nil
}

// ListUsage returns every usage row for the cost monitor.
func (s *UsageStore) ListUsage(ctx context.Context) ([]models.SmsUsage, error) {
	var rows []models.SmsUsage

	err := s.db.WithContext(ctx).Find(&rows).Error

	return rows, err
}
