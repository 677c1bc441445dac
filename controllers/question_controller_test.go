package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askora/askora/models"
)

func TestCreateQuestionSetsAuthorAndProjection(t *testing.T) {
	r, _ := newTestAPI(t)
	uid, token := register(t, r, "alice")

	q := createQuestion(t, r, token, "how do goroutines leak", "go", "concurrency")

	assert.Equal(t, uid, q.UserID)
	assert.True(t, q.Own)
	assert.Nil(t, q.OwnVote)
	assert.ElementsMatch(t, []string{"go", "concurrency"}, q.Tags)
}

func TestCreateQuestionRequiresAuth(t *testing.T) {
	r, _ := newTestAPI(t)

	w := do(r, http.MethodPost, "/questions", `{"title":"t","content":"c"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateQuestionValidation(t *testing.T) {
	r, _ := newTestAPI(t)
	_, token := register(t, r, "alice")

	w := do(r, http.MethodPost, "/questions", `{"title":"","content":""}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Markup-only titles collapse to empty after sanitization.
	w = do(r, http.MethodPost, "/questions", `{"title":"<script>x()</script>","content":"body"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateQuestionAuthorOnly(t *testing.T) {
	r, _ := newTestAPI(t)
	_, owner := register(t, r, "alice")
	_, other := register(t, r, "bob")

	q := createQuestion(t, r, owner, "original title")
	path := fmt.Sprintf("/questions/%d", q.ID)
	body := `{"title":"new title","content":"new body"}`

	w := do(r, http.MethodPost, path, body, other)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, path, body, owner)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Question
	decodeData(t, w, "question", &updated)
	assert.Equal(t, "new title", updated.Title)
	assert.True(t, updated.Own)

	// PUT stays as an alias of the POST update route.
	w = do(r, http.MethodPut, path, `{"title":"put title","content":"new body"}`, owner)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, "question", &updated)
	assert.Equal(t, "put title", updated.Title)
}

func TestDeleteQuestionCascades(t *testing.T) {
	r, _ := newTestAPI(t)
	_, owner := register(t, r, "alice")
	_, other := register(t, r, "bob")

	q := createQuestion(t, r, owner, "to be removed")
	a := createAnswer(t, r, other, q.ID, "an answer")
	w := do(r, http.MethodPost, fmt.Sprintf("/questions/%d/comments", q.ID), `{"content":"a comment"}`, other)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, fmt.Sprintf("/questions/%d", q.ID), "", other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodDelete, fmt.Sprintf("/questions/%d", q.ID), "", owner)
	require.Equal(t, http.StatusOK, w.Code)

	_, code := getQuestion(t, r, owner, q.ID)
	assert.Equal(t, http.StatusNotFound, code)

	w = do(r, http.MethodGet, fmt.Sprintf("/questions/%d/answers/%d", q.ID, a.ID), "", other)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuestionCommentLifecycle(t *testing.T) {
	r, _ := newTestAPI(t)
	_, owner := register(t, r, "alice")
	_, commenter := register(t, r, "bob")

	q := createQuestion(t, r, owner, "commented question")

	w := do(r, http.MethodPost, fmt.Sprintf("/questions/%d/comments", q.ID), `{"content":"nice one"}`, commenter)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var withComment models.Question
	decodeData(t, w, "question", &withComment)
	require.Len(t, withComment.Comments, 1)
	assert.Equal(t, "nice one", withComment.Comments[0].Content)
	assert.True(t, withComment.Comments[0].Own)

	commentID := withComment.Comments[0].ID
	path := fmt.Sprintf("/questions/%d/comments/%d", q.ID, commentID)

	w = do(r, http.MethodDelete, path, "", owner)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodDelete, path, "", commenter)
	require.Equal(t, http.StatusOK, w.Code)

	fresh, code := getQuestion(t, r, owner, q.ID)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, fresh.Comments)
}

func TestCommentOnMissingQuestion(t *testing.T) {
	r, _ := newTestAPI(t)
	_, token := register(t, r, "alice")

	w := do(r, http.MethodPost, "/questions/9999/comments", `{"content":"hi"}`, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDetailVisitBumpsViews(t *testing.T) {
	r, _ := newTestAPI(t)
	_, token := register(t, r, "alice")

	q := createQuestion(t, r, token, "popular question")

	first, code := getQuestion(t, r, token, q.ID)
	require.Equal(t, http.StatusOK, code)
	second, code := getQuestion(t, r, token, q.ID)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, first.Views+1, second.Views)
}

type listingItem struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Own     bool   `json:"own"`
	OwnVote *int   `json:"ownVote"`
	Score   int    `json:"score"`
}

type listingPayload struct {
	Items  []listingItem `json:"items"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func decodeListing(t *testing.T, w *httptest.ResponseRecorder) listingPayload {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var p listingPayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func TestNamedViewUnanswered(t *testing.T) {
	r, _ := newTestAPI(t)
	_, alice := register(t, r, "alice")
	_, bob := register(t, r, "bob")

	open := createQuestion(t, r, alice, "open question")
	answered := createQuestion(t, r, alice, "answered question")
	createAnswer(t, r, bob, answered.ID, "the answer")

	w := do(r, http.MethodGet, "/questions/list/unanswered", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decodeListing(t, w)
	require.Len(t, p.Items, 1)
	assert.Equal(t, open.ID, p.Items[0].ID)
}

func TestNamedViewIncorrect(t *testing.T) {
	r, _ := newTestAPI(t)
	_, alice := register(t, r, "alice")
	_, bob := register(t, r, "bob")

	solved := createQuestion(t, r, alice, "solved question")
	a := createAnswer(t, r, bob, solved.ID, "the fix")
	w := do(r, http.MethodGet, fmt.Sprintf("/questions/%d/answers/%d/correct", solved.ID, a.ID), "", alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	unsolved := createQuestion(t, r, alice, "unsolved question")
	createAnswer(t, r, bob, unsolved.ID, "a guess")

	w = do(r, http.MethodGet, "/questions/list/incorrect", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	p := decodeListing(t, w)
	require.Len(t, p.Items, 1)
	assert.Equal(t, unsolved.ID, p.Items[0].ID)
}

func TestNamedViewUnknown(t *testing.T) {
	r, _ := newTestAPI(t)

	w := do(r, http.MethodGet, "/questions/list/bogus", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHotViewOrdersByRecentVotes(t *testing.T) {
	r, _ := newTestAPI(t)
	_, alice := register(t, r, "alice")
	_, bob := register(t, r, "bob")

	quiet := createQuestion(t, r, alice, "quiet question")
	hot := createQuestion(t, r, alice, "hot question")
	w := do(r, http.MethodGet, fmt.Sprintf("/questions/%d/upvote", hot.ID), "", bob)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodGet, "/questions/list/hot", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	p := decodeListing(t, w)
	require.Len(t, p.Items, 2)
	assert.Equal(t, hot.ID, p.Items[0].ID)
	assert.Equal(t, quiet.ID, p.Items[1].ID)
}

func TestListingCarriesNoViewerProjection(t *testing.T) {
	r, _ := newTestAPI(t)
	_, alice := register(t, r, "alice")

	q := createQuestion(t, r, alice, "voted question")
	w := do(r, http.MethodGet, fmt.Sprintf("/questions/%d/upvote", q.ID), "", alice)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/questions?includeVotes=true", "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	p := decodeListing(t, w)
	require.Len(t, p.Items, 1)
	assert.Equal(t, 1, p.Items[0].Score)
	assert.False(t, p.Items[0].Own)
	assert.Nil(t, p.Items[0].OwnVote)
}

func TestListingTagFilterAndPagination(t *testing.T) {
	r, _ := newTestAPI(t)
	_, alice := register(t, r, "alice")

	createQuestion(t, r, alice, "go question", "go")
	createQuestion(t, r, alice, "sql question", "sql")
	createQuestion(t, r, alice, "mixed question", "go", "sql")

	w := do(r, http.MethodGet, "/questions?tags=go", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	p := decodeListing(t, w)
	assert.EqualValues(t, 2, p.Total)

	w = do(r, http.MethodGet, "/questions?tags=go&limit=1&offset=1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	p = decodeListing(t, w)
	assert.EqualValues(t, 2, p.Total)
	assert.Len(t, p.Items, 1)
}

func TestListingRejectsUnknownSort(t *testing.T) {
	r, _ := newTestAPI(t)

	w := do(r, http.MethodGet, "/questions?orderBy=sneaky", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTagListing(t *testing.T) {
	r, _ := newTestAPI(t)
	_, alice := register(t, r, "alice")

	createQuestion(t, r, alice, "first", "go", "testing")
	createQuestion(t, r, alice, "second", "go")

	w := do(r, http.MethodGet, "/tags", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var tags []string
	decodeData(t, w, "tags", &tags)
	assert.Equal(t, []string{"go", "testing"}, tags)
}
