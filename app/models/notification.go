package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types created by the payment reconciliation engine.
const (
	NotificationTypeEventApplication        = "event_application"
	NotificationTypeGatheringApplication    = "gathering_application"
	NotificationTypeConsultationApplication = "consultation_application"
	NotificationTypeSystem                  = "system"
)

// Notification is created once per logical occurrence and fanned out to
// recipients through UserNotification rows. A user's inbox queries the link
// table, not this one.
type Notification struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Type        string         `gorm:"type:varchar(50);index" json:"type" validate:"oneof=event_application gathering_application consultation_application system"`
	Content     string         `gorm:"type:text" json:"content"`
	ReferenceID uint           `json:"reference_id"` // ID of the entity the notification refers to (event id)
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserNotification links a notification to one recipient.
type UserNotification struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	NotificationID uint           `gorm:"not null;index:ux_user_notifications_notification_user,unique,priority:1" json:"notification_id"`
	Notification   Notification   `gorm:"foreignKey:NotificationID" json:"notification,omitempty"`
	UserID         uint           `gorm:"not null;index:ux_user_notifications_notification_user,unique,priority:2;index" json:"user_id"`
	IsRead         bool           `gorm:"default:false" json:"is_read"`
	ReadAt         *time.Time     `gorm:"type:timestamp;default:null" json:"read_at,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarkAsRead marks a user's notification link as read.
func (un *UserNotification) MarkAsRead(db *gorm.DB) error {
	now := time.Now()
	un.IsRead = true
	un.ReadAt = &now
	return db.Model(un).Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error
}
