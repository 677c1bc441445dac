package models

import "time"

// Vote is one viewer's current vote on a question or an answer. The unique
// index over (voter, target) makes replace-not-append structural: casting a
// new vote updates the existing row for the pair. AnswerID zero means the
// question itself is the target; keeping both columns non-nullable is what
// lets the unique index enforce the pair (MySQL treats NULLs as distinct).
//
// Voter identity is never serialized; vote collections surface only as an
// aggregate score plus the requesting viewer's own projection.
type Vote struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_votes_voter_target" json:"-"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_votes_voter_target" json:"-"`
	AnswerID   uint      `gorm:"not null;default:0;uniqueIndex:idx_votes_voter_target" json:"-"`
	Value      int       `gorm:"not null" json:"value"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Favorite is a presence-only (viewer, question) pair.
type Favorite struct {
	UserID     uint      `gorm:"primaryKey;autoIncrement:false" json:"userID"`
	QuestionID uint      `gorm:"primaryKey;autoIncrement:false" json:"questionID"`
	CreatedAt  time.Time `json:"createdAt"`
}
