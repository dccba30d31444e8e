package models

import "time"

// Payment status values mirrored from the gateway checkout session.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// GatheringAttendance records a user's seat at an event's social gathering.
// It is the only attendance category that carries payment data; its
// PaymentReference column doubles as the idempotency ledger for webhook
// deliveries (a redelivered checkout event carries the same reference).
type GatheringAttendance struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	EventID          uint       `gorm:"not null;index:ux_gathering_attendances_event_user,unique,priority:1" json:"event_id"`
	UserID           uint       `gorm:"not null;index:ux_gathering_attendances_event_user,unique,priority:2;index" json:"user_id"`
	PaymentReference string     `gorm:"type:varchar(191);index" json:"payment_reference"`
	PaymentStatus    string     `gorm:"type:varchar(32);default:''" json:"payment_status"`
	Amount           int64      `gorm:"default:0" json:"amount"`
	PaidAt           *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        *time.Time `gorm:"type:timestamp;default:null;index" json:"-"`
}
