package models

import (
	"time"
)

// NotificationRecord is the audit trail: one row per channel per dispatch
// attempt. Status is later updated out-of-band by the delivery-status
// webhook, matched on ExternalID.
type NotificationRecord struct {
	BaseModel

	MonitorID    uint       `gorm:"not null;index" json:"monitor_id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	Type         string     `gorm:"not null" json:"type"`    // "pattern_found", "pattern_lost", "error"
	Channel      string     `gorm:"not null" json:"channel"` // "email" or "sms"
	Address      string     `gorm:"not null" json:"address"`
	Message      string     `json:"message"`
	Status       string     `gorm:"not null" json:"status"` // "sent" or "failed"
	ErrorMessage string     `json:"error_message,omitempty"`
	ExternalID   string     `gorm:"index" json:"external_id,omitempty"` // provider message SID
	SentAt       *time.Time `json:"sent_at"`

	// Relationships
	Monitor Monitor `gorm:"foreignKey:MonitorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
