package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askora/askora/models"
)

func TestCreateAnswerSetsAuthorAndProjection(t *testing.T) {
	r, _ := newTestAPI(t)
	_, asker := register(t, r, "alice")
	bobID, bob := register(t, r, "bob")

	q := createQuestion(t, r, asker, "needs an answer")
	a := createAnswer(t, r, bob, q.ID, "use a channel")

	assert.Equal(t, bobID, a.UserID)
	assert.Equal(t, q.ID, a.QuestionID)
	assert.True(t, a.Own)
	assert.Nil(t, a.OwnVote)
	assert.False(t, a.Correct)
}

func TestCreateAnswerRequiresAuth(t *testing.T) {
	r, _ := newTestAPI(t)
	_, asker := register(t, r, "alice")
	q := createQuestion(t, r, asker, "open question")

	w := do(r, http.MethodPost, fmt.Sprintf("/questions/%d/answers", q.ID), `{"answer":"a"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAnswerOnMissingQuestion(t *testing.T) {
	r, _ := newTestAPI(t)
	_, token := register(t, r, "alice")

	w := do(r, http.MethodPost, "/questions/9999/answers", `{"answer":"a"}`, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAnswerAuthorOnly(t *testing.T) {
	r, _ := newTestAPI(t)
	_, asker := register(t, r, "alice")
	_, bob := register(t, r, "bob")

	q := createQuestion(t, r, asker, "question")
	a := createAnswer(t, r, bob, q.ID, "first draft")
	path := fmt.Sprintf("/questions/%d/answers/%d", q.ID, a.ID)

	w := do(r, http.MethodPost, path, `{"answer":"hijacked"}`, asker)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, path, `{"answer":"second draft"}`, bob)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var updated models.Answer
	decodeData(t, w, "answer", &updated)
	assert.Equal(t, "second draft", updated.Content)
	assert.True(t, updated.Own)

	// PUT stays as an alias of the POST update route.
	w = do(r, http.MethodPut, path, `{"answer":"third draft"}`, bob)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decodeData(t, w, "answer", &updated)
	assert.Equal(t, "third draft", updated.Content)
}

func TestDeleteAnswerCascades(t *testing.T) {
	r, _ := newTestAPI(t)
	_, asker := register(t, r, "alice")
	_, bob := register(t, r, "bob")

	q := createQuestion(t, r, asker, "question")
	a := createAnswer(t, r, bob, q.ID, "disposable answer")
	path := fmt.Sprintf("/questions/%d/answers/%d", q.ID, a.ID)

	w := do(r, http.MethodGet, path+"/upvote", "", asker)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodPost, path+"/comments", `{"content":"why though"}`, asker)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodDelete, path, "", asker)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodDelete, path, "", bob)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	fresh, code := getQuestion(t, r, asker, q.ID)
	require.Equal(t, http.StatusOK, code)
	assert.Zero(t, fresh.AnswersCount)
}

func TestAnswerCommentLifecycle(t *testing.T) {
	r, _ := newTestAPI(t)
	_, asker := register(t, r, "alice")
	_, bob := register(t, r, "bob")

	q := createQuestion(t, r, asker, "question")
	a := createAnswer(t, r, bob, q.ID, "the answer")
	base := fmt.Sprintf("/questions/%d/answers/%d", q.ID, a.ID)

	w := do(r, http.MethodPost, base+"/comments", `{"content":"could you expand"}`, asker)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var withComment models.Answer
	decodeData(t, w, "answer", &withComment)
	require.Len(t, withComment.Comments, 1)
	assert.True(t, withComment.Comments[0].Own)

	commentID := withComment.Comments[0].ID

	w = do(r, http.MethodDelete, fmt.Sprintf("%s/comments/%d", base, commentID), "", bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodDelete, fmt.Sprintf("%s/comments/%d", base, commentID), "", asker)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAnswerCommentRejectsMismatchedQuestion(t *testing.T) {
	r, _ := newTestAPI(t)
	_, asker := register(t, r, "alice")
	_, bob := register(t, r, "bob")

	q1 := createQuestion(t, r, asker, "first question")
	q2 := createQuestion(t, r, asker, "second question")
	a := createAnswer(t, r, bob, q1.ID, "answer to the first")

	// The answer hangs off q1, so addressing it through q2 is a 404.
	path := fmt.Sprintf("/questions/%d/answers/%d/comments", q2.ID, a.ID)
	w := do(r, http.MethodPost, path, `{"content":"lost comment"}`, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
