package models

import (
	"time"
)

// MonitorCheck is one row of the append-only check log. Rows are written
// once per check invocation and never mutated.
type MonitorCheck struct {
	BaseModel

	MonitorID    uint   `gorm:"not null;index" json:"monitor_id"`
	Status       string `gorm:"not null" json:"status"` // "found", "not_found", "error"
	ResponseTime int    `gorm:"not null" json:"response_time"`
	Snippet      string `json:"snippet,omitempty"`
	Message      string `json:"message,omitempty"`
	CheckedAt    time.Time `gorm:"not null" json:"checked_at"`

	// Relationships
	Monitor Monitor `gorm:"foreignKey:MonitorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
