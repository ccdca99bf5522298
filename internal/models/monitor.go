package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/pagewatch-dev/pagewatch/internal/types"
)

type Monitor struct {
	BaseModel

	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Name        string         `gorm:"not null" json:"name"`
	URL         string         `gorm:"not null" json:"url"`
	Pattern     string         `gorm:"not null" json:"pattern"`
	PatternType string         `gorm:"not null" json:"pattern_type"` // "contains", "not_contains", "regex"
	Interval    int            `gorm:"not null" json:"interval"`     // Interval in seconds between checks
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	LastStatus  string         `gorm:"not null;default:pending" json:"last_status"` // "pending", "found", "not_found", "error"
	LastChecked *time.Time     `json:"last_checked"`
	Channels    datatypes.JSON `gorm:"type:jsonb" json:"channels"` // ordered list of {type, address}

	// Relationships
	User   User           `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Checks []MonitorCheck `gorm:"foreignKey:MonitorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// ChannelList decodes the channels JSON into its typed form.
func (m *Monitor) ChannelList() ([]types.ChannelConfig, error) {
	var channels []types.ChannelConfig

	if len(m.Channels) == 0 {
		return channels, nil
	}

	if err := json.Unmarshal(m.Channels, &channels); err != nil {
		return nil, err
	}

	return channels, nil
}
