package models

import "time"

// QuestionAnswer stores a user's answer to a custom checkout question.
// Re-submission soft-deletes the prior row for the same (user, question) and
// inserts a fresh one, keeping a correction history.
type QuestionAnswer struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index:idx_question_answers_user_key,priority:1" json:"user_id"`
	QuestionKey string     `gorm:"type:varchar(100);not null;index:idx_question_answers_user_key,priority:2" json:"question_key"`
	Answer      string     `gorm:"type:text" json:"answer"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   *time.Time `gorm:"type:timestamp;default:null;index" json:"-"`
}
