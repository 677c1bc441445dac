package models

import "time"

// Comment hangs off either a question or an answer, never both.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID *uint     `gorm:"index" json:"questionID,omitempty"`
	AnswerID   *uint     `gorm:"index" json:"answerID,omitempty"`
	UserID     uint      `gorm:"index;not null" json:"userID"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"createdAt"`

	Own bool `gorm:"-" json:"own"`
}
