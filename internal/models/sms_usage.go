package models

import (
	"time"
)

// SmsUsage tracks per-user SMS counters and spend. One row per user,
// created lazily on the first send attempt and never deleted; window
// rollovers zero the counts in place.
type SmsUsage struct {
	BaseModel

	UserID         uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	HourlyCount    int       `gorm:"not null;default:0" json:"hourly_count"`
	DailyCount     int       `gorm:"not null;default:0" json:"daily_count"`
	MonthlyCount   int       `gorm:"not null;default:0" json:"monthly_count"`
	MonthlyCost    float64   `gorm:"not null;default:0" json:"monthly_cost"`
	LastResetHour  time.Time `gorm:"not null" json:"last_reset_hour"`
	LastResetDay   time.Time `gorm:"not null" json:"last_reset_day"`
	LastResetMonth time.Time `gorm:"not null" json:"last_reset_month"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
