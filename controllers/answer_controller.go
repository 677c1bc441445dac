package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/askora/askora/middleware"
	"github.com/askora/askora/models"
	"github.com/askora/askora/store"
	"github.com/askora/askora/utils"
)

// AnswerController handles answers and their comments.
type AnswerController struct {
	store store.ContentStore
	gate  middleware.Gate
}

// NewAnswerController creates a new AnswerController instance.
func NewAnswerController(s store.ContentStore, g middleware.Gate) *AnswerController {
	return &AnswerController{store: s, gate: g}
}

type answerBody struct {
	Answer string `json:"answer" binding:"required,min=1"`
}

// Get serves the personalized answer detail view.
func (ac *AnswerController) Get(ctx *gin.Context) {
	questionID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	answerID, ok := parseID(ctx, "answerId")
	if !ok {
		return
	}

	a, err := ac.store.AnswerByID(ctx.Request.Context(), questionID, answerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load answer")
		return
	}

	viewerID, _ := middleware.ViewerID(ctx)
	utils.Success(ctx, gin.H{"answer": a.ApplyViewer(viewerID)})
}

// Create posts a new answer to a question.
func (ac *AnswerController) Create(ctx *gin.Context) {
	viewerID, ok := viewer(ctx)
	if !ok {
		return
	}
	if !ac.gate.Can(viewerID, middleware.ActionAnswerCreate) {
		utils.Error(ctx, http.StatusForbidden, 40320, "not allowed to answer")
		return
	}
	questionID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req answerBody
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, 40020, err)
		return
	}
	content := utils.Sanitize(req.Answer)
	if content == "" {
		utils.ErrorFields(ctx, 40021, "invalid request payload", []utils.FieldError{
			{Field: "answer", Message: "must be non-empty"},
		})
		return
	}

	a := models.Answer{QuestionID: questionID, UserID: viewerID, Content: content}
	if err := ac.store.CreateAnswer(ctx.Request.Context(), &a); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40421, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to create answer")
		return
	}

	utils.InvalidateByPrefix(utils.KeyQuestionList)

	fresh, err := ac.store.AnswerByID(ctx.Request.Context(), questionID, a.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load answer")
		return
	}
	utils.Created(ctx, gin.H{"answer": fresh.ApplyViewer(viewerID)})
}

// Update replaces the answer body. Author-only.
func (ac *AnswerController) Update(ctx *gin.Context) {
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

	existing, err := ac.store.AnswerByID(ctx.Request.Context(), questionID, answerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40422, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load answer")
		return
	}
	if existing.UserID != viewerID {
		utils.Error(ctx, http.StatusForbidden, 40321, "only the author can update an answer")
		return
	}

	var req answerBody
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, 40022, err)
		return
	}
	content := utils.Sanitize(req.Answer)
	if content == "" {
		utils.ErrorFields(ctx, 40023, "invalid request payload", []utils.FieldError{
			{Field: "answer", Message: "must be non-empty"},
		})
		return
	}

	updated := models.Answer{ID: answerID, QuestionID: questionID, Content: content}
	if err := ac.store.UpdateAnswer(ctx.Request.Context(), &updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40422, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to update answer")
		return
	}

	utils.InvalidateByPrefix(utils.KeyQuestionList)

	fresh, err := ac.store.AnswerByID(ctx.Request.Context(), questionID, answerID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to load answer")
		return
	}
	utils.Created(ctx, gin.H{"answer": fresh.ApplyViewer(viewerID)})
}

// Delete removes an answer along with its votes and comments. Author-only.
func (ac *AnswerController) Delete(ctx *gin.Context) {
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

	existing, err := ac.store.AnswerByID(ctx.Request.Context(), questionID, answerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40423, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to load answer")
		return
	}
	if existing.UserID != viewerID {
		utils.Error(ctx, http.StatusForbidden, 40322, "only the author can delete an answer")
		return
	}

	if err := ac.store.DeleteAnswer(ctx.Request.Context(), questionID, answerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40423, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50037, "failed to delete answer")
		return
	}

	utils.InvalidateByPrefix(utils.KeyQuestionList)
	utils.Success(ctx, gin.H{"message": "answer deleted"})
}

// CreateComment attaches a comment to an answer and returns the updated,
// enriched answer.
func (ac *AnswerController) CreateComment(ctx *gin.Context) {
	viewerID, ok := viewer(ctx)
	if !ok {
		return
	}
	if !ac.gate.Can(viewerID, middleware.ActionCommentCreate) {
		utils.Error(ctx, http.StatusForbidden, 40323, "not allowed to comment")
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

	var req struct {
		Content string `json:"content" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, 40024, err)
		return
	}
	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.ErrorFields(ctx, 40025, "invalid request payload", []utils.FieldError{
			{Field: "content", Message: "must be non-empty"},
		})
		return
	}

	// Confirm the answer actually hangs off this question before writing.
	if _, err := ac.store.AnswerByID(ctx.Request.Context(), questionID, answerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40424, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50038, "failed to load answer")
		return
	}

	comment := models.Comment{QuestionID: &questionID, AnswerID: &answerID, UserID: viewerID, Content: content}
	if err := ac.store.CreateComment(ctx.Request.Context(), &comment); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40424, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50039, "failed to create comment")
		return
	}

	utils.InvalidateByPrefix(utils.KeyQuestionList)

	fresh, err := ac.store.AnswerByID(ctx.Request.Context(), questionID, answerID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load answer")
		return
	}
	utils.Created(ctx, gin.H{"answer": fresh.ApplyViewer(viewerID)})
}

// DeleteComment removes an answer comment after checking parentage and
// authorship.
func (ac *AnswerController) DeleteComment(ctx *gin.Context) {
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
	commentID, ok := parseID(ctx, "commentId")
	if !ok {
		return
	}

	a, err := ac.store.AnswerByID(ctx.Request.Context(), questionID, answerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40425, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load answer")
		return
	}

	var target *models.Comment
	for i := range a.Comments {
		if a.Comments[i].ID == commentID {
			target = &a.Comments[i]
			break
		}
	}
	if target == nil {
		utils.Error(ctx, http.StatusNotFound, 40426, "comment not found")
		return
	}
	if target.UserID != viewerID {
		utils.Error(ctx, http.StatusForbidden, 40324, "only the author can delete a comment")
		return
	}

	if err := ac.store.DeleteComment(ctx.Request.Context(), store.Ref{QuestionID: questionID, AnswerID: answerID}, commentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40426, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to delete comment")
		return
	}

	utils.InvalidateByPrefix(utils.KeyQuestionList)
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}
