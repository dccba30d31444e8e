package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Event is a scheduled portal event. The reconciliation engine only reads
// events (title lookup for notification text); creation and editing happen
// through the admin surface.
type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=1,max=200"`
	Description string         `gorm:"type:text" json:"description"`
	Location    string         `gorm:"type:varchar(200)" json:"location"`
	StartsAt    *time.Time     `gorm:"type:timestamp;default:null;index" json:"starts_at,omitempty"`
	EndsAt      *time.Time     `gorm:"type:timestamp;default:null" json:"ends_at,omitempty"`
	Capacity    int            `gorm:"default:0" json:"capacity"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e *Event) Validate() error {
	v := validator.New()

	return v.Struct(e)
}
