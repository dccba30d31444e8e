package models

import "time"

// ConsultationAttendance records a user's consultation seat for an event.
type ConsultationAttendance struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	EventID   uint       `gorm:"not null;index:ux_consultation_attendances_event_user,unique,priority:1" json:"event_id"`
	UserID    uint       `gorm:"not null;index:ux_consultation_attendances_event_user,unique,priority:2;index" json:"user_id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"type:timestamp;default:null;index" json:"-"`
}
