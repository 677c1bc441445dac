package models

import "time"

// Answer belongs to exactly one question. At most one answer per question
// carries the correct flag; the store enforces the transition atomically.
type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"index;not null" json:"questionID"`
	UserID     uint      `gorm:"index;not null" json:"userID"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Correct    bool      `gorm:"default:false" json:"correct"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Comments []Comment `gorm:"-" json:"comments,omitempty"`
	Votes    []Vote    `gorm:"-" json:"-"`

	Score int `gorm:"-" json:"score"`

	OwnVote *int `gorm:"-" json:"ownVote,omitempty"`
	Own     bool `gorm:"-" json:"own"`
}
