package models

import "time"

// NotificationSetting is a per-user, per-type opt-in flag. An absent row is
// an implicit opt-out, so readers must treat "not found" as disabled rather
// than as an error.
type NotificationSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:ux_notification_settings_user_type,unique,priority:1" json:"user_id"`
	Type      string    `gorm:"type:varchar(50);not null;index:ux_notification_settings_user_type,unique,priority:2" json:"type"`
	Enabled   bool      `gorm:"default:false" json:"enabled"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
