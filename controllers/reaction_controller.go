package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/askora/askora/middleware"
	"github.com/askora/askora/store"
	"github.com/askora/askora/utils"
)

// ReactionController handles votes, favorites, and correct-answer marks.
type ReactionController struct {
	store store.ContentStore
	gate  middleware.Gate
}

// NewReactionController creates a new ReactionController instance.
func NewReactionController(s store.ContentStore, g middleware.Gate) *ReactionController {
	return &ReactionController{store: s, gate: g}
}

// UpvoteQuestion records a +1 vote on a question.
func (rc *ReactionController) UpvoteQuestion(ctx *gin.Context) {
	rc.voteQuestion(ctx, 1)
}

// DownvoteQuestion records a -1 vote on a question.
func (rc *ReactionController) DownvoteQuestion(ctx *gin.Context) {
	rc.voteQuestion(ctx, -1)
}

func (rc *ReactionController) voteQuestion(ctx *gin.Context, value int) {
	viewerID, ok := viewer(ctx)
	if !ok {
		return
	}
	if !rc.gate.Can(viewerID, middleware.ActionVote) {
		utils.Error(ctx, http.StatusForbidden, 40330, "not allowed to vote")
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := rc.store.CastVote(ctx.Request.Context(), viewerID, store.Ref{QuestionID: id}, value); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to record vote")
		return
	}

	utils.InvalidateByPrefix(utils.KeyQuestionList)

	q, err := rc.store.QuestionByID(ctx.Request.Context(), id)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to load question")
		return
	}
	utils.Success(ctx, gin.H{"question": q.ApplyViewer(viewerID)})
}

// UpvoteAnswer records a +1 vote on an answer.
func (rc *ReactionController) UpvoteAnswer(ctx *gin.Context) {
	rc.voteAnswer(ctx, 1)
}

// DownvoteAnswer records a -1 vote on an answer.
func (rc *ReactionController) DownvoteAnswer(ctx *gin.Context) {
	rc.voteAnswer(ctx, -1)
}

func (rc *ReactionController) voteAnswer(ctx *gin.Context, value int) {
	viewerID, ok := viewer(ctx)
	if !ok {
		return
	}
	if !rc.gate.Can(viewerID, middleware.ActionVote) {
		utils.Error(ctx, http.StatusForbidden, 40330, "not allowed to vote")
		return
	}
	questionID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	answerID, ok := parseID(ctx, "answerId")
	if !ok {
		return
	}

	// Reject votes on answers detached from the addressed question.
	if _, err := rc.store.AnswerByID(ctx.Request.Context(), questionID, answerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40431, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load answer")
		return
	}

	ref := store.Ref{QuestionID: questionID, AnswerID: answerID}
	if err := rc.store.CastVote(ctx.Request.Context(), viewerID, ref, value); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40431, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to record vote")
		return
	}

	utils.InvalidateByPrefix(utils.KeyQuestionList)

	a, err := rc.store.AnswerByID(ctx.Request.Context(), questionID, answerID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to load answer")
		return
	}
	utils.Success(ctx, gin.H{"answer": a.ApplyViewer(viewerID)})
}

// Favorite adds the question to the viewer's favorites.
func (rc *ReactionController) Favorite(ctx *gin.Context) {
	rc.setFavorite(ctx, true)
}

// Unfavorite removes the question from the viewer's favorites.
func (rc *ReactionController) Unfavorite(ctx *gin.Context) {
	rc.setFavorite(ctx, false)
}

func (rc *ReactionController) setFavorite(ctx *gin.Context, favored bool) {
	viewerID, ok := viewer(ctx)
	if !ok {
		return
	}
	if !rc.gate.Can(viewerID, middleware.ActionFavorite) {
		utils.Error(ctx, http.StatusForbidden, 40331, "not allowed to favorite")
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	// Repeating a toggle is a no-op, not an error.
	if _, err := rc.store.SetFavorite(ctx.Request.Context(), viewerID, id, favored); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40432, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to update favorite")
		return
	}

	q, err := rc.store.QuestionByID(ctx.Request.Context(), id)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to load question")
		return
	}
	utils.Success(ctx, gin.H{"question": q.ApplyViewer(viewerID)})
}

// Correct marks an answer as the accepted one, superseding any previous mark.
func (rc *ReactionController) Correct(ctx *gin.Context) {
	rc.setCorrect(ctx, true)
}

// Incorrect clears the accepted mark from an answer.
func (rc *ReactionController) Incorrect(ctx *gin.Context) {
	rc.setCorrect(ctx, false)
}

func (rc *ReactionController) setCorrect(ctx *gin.Context, correct bool) {
	viewerID, ok := viewer(ctx)
	if !ok {
		return
	}
	questionID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	answerID, ok := parseID(ctx, "answerId")
	if !ok {
		return
	}

	q, err := rc.store.QuestionByID(ctx.Request.Context(), questionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40433, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50057, "failed to load question")
		return
	}
	// Only the question's author decides which answer solved it.
	if q.UserID != viewerID {
		utils.Error(ctx, http.StatusForbidden, 40332, "only the question author can mark answers")
		return
	}

	if err := rc.store.SetCorrect(ctx.Request.Context(), questionID, answerID, correct); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40434, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50058, "failed to update answer")
		return
	}

	utils.InvalidateByPrefix(utils.KeyQuestionList)
	utils.Success(ctx, nil)
}
