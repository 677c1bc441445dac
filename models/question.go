package models

import "time"

// Question is the aggregate root of the Q&A domain. Nested collections are
// hydrated by the store on demand; derived fields (score, trend, viewer
// projections) are computed per response and never persisted.
type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userID"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Views     uint      `gorm:"default:0" json:"views"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Tags     []string `gorm:"-" json:"tags"`
	Entities []uint64 `gorm:"-" json:"entities,omitempty"`

	Comments []Comment `gorm:"-" json:"comments,omitempty"`
	Answers  []Answer  `gorm:"-" json:"answers,omitempty"`
	Votes    []Vote    `gorm:"-" json:"-"`

	Score        int `gorm:"-" json:"score"`
	AnswersCount int `gorm:"-" json:"answersCount"`
	Trend        int `gorm:"-" json:"trend,omitempty"`

	// Viewer-relative projection, see ApplyViewer.
	OwnVote *int `gorm:"-" json:"ownVote,omitempty"`
	Own     bool `gorm:"-" json:"own"`
}

// QuestionTag is one tag attached to a question. Tags are stored as rows so
// the tag filter and the global tag listing stay plain queries.
type QuestionTag struct {
	QuestionID uint   `gorm:"primaryKey;autoIncrement:false"`
	Tag        string `gorm:"primaryKey;size:64"`
}

// QuestionEntity references an external entity a question is about.
type QuestionEntity struct {
	QuestionID uint   `gorm:"primaryKey;autoIncrement:false"`
	EntityRef  uint64 `gorm:"primaryKey;autoIncrement:false"`
}
