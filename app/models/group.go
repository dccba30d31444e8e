package models

import "time"

// GroupUnpaid is the sentinel group holding members whose subscription
// invoice last failed. Membership is toggled by the invoice webhook handler.
const GroupUnpaid = "unpaid"

// Group is a named user group resolved by natural key (name).
type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
