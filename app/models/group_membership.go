package models

import "time"

// GroupMembership links a user to a group. Rows are soft-deleted, never
// removed; the unique index on (group_id, user_id) makes re-adding a member
// an upsert that clears deleted_at on the existing row. Invariant: at most
// one row per (group, user) with deleted_at NULL.
type GroupMembership struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	GroupID   uint       `gorm:"not null;index:ux_group_memberships_group_user,unique,priority:1" json:"group_id"`
	UserID    uint       `gorm:"not null;index:ux_group_memberships_group_user,unique,priority:2;index" json:"user_id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"type:timestamp;default:null;index" json:"-"`
}

// IsActive reports whether the membership row is currently in effect.
func (m *GroupMembership) IsActive() bool {
	return m.DeletedAt == nil
}
