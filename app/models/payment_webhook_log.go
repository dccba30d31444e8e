package models

import "time"

// PaymentProviderStripe is the only payment provider currently wired.
const PaymentProviderStripe = "stripe"

// PaymentWebhookLog stores every received gateway webhook envelope with
// deduplication metadata. The unique index on (provider, provider_event_id)
// lets exact gateway retries be answered as duplicates before any
// reconciliation runs; the business-level fresh/replay decision still lives
// on the attendance payment reference.
type PaymentWebhookLog struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;index:ux_payment_webhook_logs_provider_event,unique,priority:1;index" json:"provider"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;default:'';index:ux_payment_webhook_logs_provider_event,unique,priority:2" json:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	SignatureValid  bool       `gorm:"default:false;index" json:"signature_valid"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProcessedCleanly reports whether a prior delivery of this envelope ran to
// completion without error. Only then may a retry be answered as a duplicate;
// an envelope whose processing failed or was cut short must be reprocessed,
// since the gateway retry is the only path that ever re-applies it.
func (l *PaymentWebhookLog) ProcessedCleanly() bool {
	return l.ProcessedAt != nil && l.ProcessingError == ""
}
