package models

import "time"

// EventAttendance records a user's application to an event's main session.
// DeletedAt is managed by the reconciliation engine instead of gorm.DeletedAt:
// a re-application after a cancellation must clear the timestamp on the same
// row, never insert a second one. Invariant: at most one row per (event, user)
// with deleted_at NULL.
type EventAttendance struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	EventID   uint       `gorm:"not null;index:ux_event_attendances_event_user,unique,priority:1" json:"event_id"`
	UserID    uint       `gorm:"not null;index:ux_event_attendances_event_user,unique,priority:2;index" json:"user_id"`
	IsOnline  bool       `gorm:"default:false" json:"is_online"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"type:timestamp;default:null;index" json:"-"`
}
