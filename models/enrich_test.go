package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyViewerOwnership(t *testing.T) {
	q := &Question{ID: 1, UserID: 7}

	q.ApplyViewer(7)
	assert.True(t, q.Own)

	q.ApplyViewer(8)
	assert.False(t, q.Own)
}

func TestApplyViewerOwnVote(t *testing.T) {
	q := &Question{
		ID:     1,
		UserID: 2,
		Votes: []Vote{
			{UserID: 5, QuestionID: 1, Value: -1},
			{UserID: 7, QuestionID: 1, Value: 1},
		},
	}

	q.ApplyViewer(7)
	require.NotNil(t, q.OwnVote)
	assert.Equal(t, 1, *q.OwnVote)

	q.ApplyViewer(5)
	require.NotNil(t, q.OwnVote)
	assert.Equal(t, -1, *q.OwnVote)

	// Viewer without a vote row gets no projection at all.
	q.ApplyViewer(9)
	assert.Nil(t, q.OwnVote)
}

func TestApplyViewerRecursesIntoAnswersAndComments(t *testing.T) {
	qid, aid := uint(1), uint(10)
	q := &Question{
		ID:     1,
		UserID: 2,
		Comments: []Comment{
			{ID: 1, UserID: 7, QuestionID: &qid, Content: "a comment"},
			{ID: 2, UserID: 3, QuestionID: &qid, Content: "another"},
		},
		Answers: []Answer{
			{
				ID:         10,
				QuestionID: 1,
				UserID:     7,
				Votes:      []Vote{{UserID: 3, QuestionID: 1, AnswerID: aid, Value: 1}},
				Comments:   []Comment{{ID: 3, UserID: 7, AnswerID: &aid}},
			},
		},
	}

	q.ApplyViewer(7)

	assert.False(t, q.Own)
	assert.True(t, q.Comments[0].Own)
	assert.False(t, q.Comments[1].Own)
	assert.Equal(t, "a comment", q.Comments[0].Content)

	ans := q.Answers[0]
	assert.True(t, ans.Own)
	assert.Nil(t, ans.OwnVote)
	assert.True(t, ans.Comments[0].Own)

	q.ApplyViewer(3)
	ans = q.Answers[0]
	assert.False(t, ans.Own)
	require.NotNil(t, ans.OwnVote)
	assert.Equal(t, 1, *ans.OwnVote)
}

func TestApplyViewerNilIsNoop(t *testing.T) {
	var q *Question
	assert.Nil(t, q.ApplyViewer(1))
	var a *Answer
	assert.Nil(t, a.ApplyViewer(1))
}
