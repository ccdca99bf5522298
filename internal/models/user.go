package models

// User is the local identity row for a monitor owner. Credentials and
// sessions live in the external identity provider; this row only anchors
// ownership and notification history.
type User struct {
	BaseModel

	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	// Relationships
	Monitors      []Monitor            `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Notifications []NotificationRecord `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
