package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/askora/askora/middleware"
	"github.com/askora/askora/models"
	"github.com/askora/askora/store"
	"github.com/askora/askora/utils"
)

// QuestionController handles question listing, detail, and lifecycle.
type QuestionController struct {
	store store.ContentStore
	gate  middleware.Gate
}

// NewQuestionController creates a new QuestionController instance.
func NewQuestionController(s store.ContentStore, g middleware.Gate) *QuestionController {
	return &QuestionController{store: s, gate: g}
}

// listQuery is the raw filter surface of the listing endpoints. Binding
// rejects malformed fields before any translation happens.
type listQuery struct {
	Limit       int      `form:"limit" binding:"omitempty,gte=0"`
	Offset      int      `form:"offset" binding:"omitempty,gte=0"`
	Tags        []string `form:"tags"`
	Entity      uint64   `form:"entity"`
	Author      uint     `form:"author"`
	OrderBy     string   `form:"orderBy" binding:"omitempty,oneof=views score answersCount created updated trend"`
	Order       string   `form:"order" binding:"omitempty,oneof=asc desc"`
	SearchQuery string   `form:"query"`

	NoCorrectAnswer bool `form:"noCorrectAnswer"`
	NoAnswers       bool `form:"noAnswers"`
	Favorite        bool `form:"favorite"`
	NoVotes         bool `form:"noVotes"`

	IncludeAnswers  bool `form:"includeAnswers"`
	IncludeVotes    bool `form:"includeVotes"`
	IncludeEntities bool `form:"includeEntities"`
	IncludeTrend    bool `form:"includeTrend"`
	IncludeComments bool `form:"includeComments"`
}

func (r listQuery) descriptor() store.QueryDescriptor {
	return store.QueryDescriptor{
		Limit:           r.Limit,
		Offset:          r.Offset,
		Tags:            r.Tags,
		Entity:          r.Entity,
		Author:          r.Author,
		OrderBy:         r.OrderBy,
		Order:           r.Order,
		SearchQuery:     strings.TrimSpace(r.SearchQuery),
		NoCorrectAnswer: r.NoCorrectAnswer,
		NoAnswers:       r.NoAnswers,
		Favorite:        r.Favorite,
		NoVotes:         r.NoVotes,
		IncludeAnswers:  r.IncludeAnswers,
		IncludeVotes:    r.IncludeVotes,
		IncludeEntities: r.IncludeEntities,
		IncludeTrend:    r.IncludeTrend,
		IncludeComments: r.IncludeComments,
	}
}

// questionBody is the create/update payload.
type questionBody struct {
	Title    string   `json:"title" binding:"required,min=1"`
	Content  string   `json:"content" binding:"required,min=1"`
	Tags     []string `json:"tags"`
	Entities []uint64 `json:"entities"`
}

// List serves GET /questions and GET /questions/list/:type. Listings report
// aggregate fields only; viewer projections are a detail-view concern.
func (qc *QuestionController) List(ctx *gin.Context) {
	var req listQuery
	if err := ctx.ShouldBindQuery(&req); err != nil {
		bindError(ctx, 40010, err)
		return
	}

	d, err := store.TranslateView(ctx.Param("type"), req.descriptor())
	if err != nil {
		utils.ErrorFields(ctx, 40011, "invalid request", []utils.FieldError{
			{Field: "type", Message: err.Error()},
		})
		return
	}

	viewerID, hasViewer := middleware.ViewerID(ctx)
	if d.Favorite && !hasViewer {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required for favorite filter")
		return
	}

	// Viewer-independent listings are cacheable; anything scoped to the
	// viewer or randomized is not.
	cacheable := d.SearchQuery == "" && !d.Favorite && !d.RandomOrder
	cacheKey := utils.KeyQuestionList + ctx.Param("type") + "?" + ctx.Request.URL.RawQuery
	if cacheable {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	items, total, err := qc.store.SearchQuestions(ctx.Request.Context(), viewerID, d)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to list questions")
		return
	}

	payload := gin.H{
		"items":  items,
		"total":  total,
		"limit":  d.Limit,
		"offset": d.Offset,
	}
	if cacheable {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload})
	}
	utils.Success(ctx, payload)
}

// Get serves the personalized question detail view.
func (qc *QuestionController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := qc.store.RecordView(ctx.Request.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
		utils.Sugar.Warnf("view bump failed question=%d err=%v", id, err)
	}

	q, err := qc.store.QuestionByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load question")
		return
	}

	viewerID, _ := middleware.ViewerID(ctx)
	utils.Success(ctx, gin.H{"question": q.ApplyViewer(viewerID)})
}

// Create posts a new question. Author and timestamps come from the resolved
// identity, never from client input.
func (qc *QuestionController) Create(ctx *gin.Context) {
	viewerID, ok := viewer(ctx)
	if !ok {
		return
	}
	if !qc.gate.Can(viewerID, middleware.ActionQuestionCreate) {
		utils.Error(ctx, http.StatusForbidden, 40310, "not allowed to create questions")
		return
	}

	var req questionBody
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, 40012, err)
		return
	}
	title := utils.SanitizePlain(strings.TrimSpace(req.Title))
	content := utils.Sanitize(req.Content)
	if title == "" || content == "" {
		utils.ErrorFields(ctx, 40013, "invalid request payload", []utils.FieldError{
			{Field: "title", Message: "title and content must be non-empty"},
		})
		return
	}

	q := models.Question{
		UserID:   viewerID,
		Title:    title,
		Content:  content,
		Tags:     cleanTags(req.Tags),
		Entities: req.Entities,
	}
	if err := qc.store.CreateQuestion(ctx.Request.Context(), &q); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to create question")
		return
	}

	utils.InvalidateByPrefix(utils.KeyQuestionList)
	utils.InvalidateByPrefix(utils.KeyTagList)

	fresh, err := qc.store.QuestionByID(ctx.Request.Context(), q.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to load question")
		return
	}
	utils.Created(ctx, gin.H{"question": fresh.ApplyViewer(viewerID)})
}

// Update replaces title/content/tags/entities. Author-only.
func (qc *QuestionController) Update(ctx *gin.Context) {
	viewerID, ok := viewer(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	existing, err := qc.store.QuestionByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load question")
		return
	}
	if existing.UserID != viewerID {
		utils.Error(ctx, http.StatusUnauthorized, 40130, "only the author can update a question")
		return
	}

	var req questionBody
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, 40014, err)
		return
	}
	title := utils.SanitizePlain(strings.TrimSpace(req.Title))
	content := utils.Sanitize(req.Content)
	if title == "" || content == "" {
		utils.ErrorFields(ctx, 40015, "invalid request payload", []utils.FieldError{
			{Field: "title", Message: "title and content must be non-empty"},
		})
		return
	}

	updated := models.Question{
		ID:       id,
		Title:    title,
		Content:  content,
		Tags:     cleanTags(req.Tags),
		Entities: req.Entities,
	}
	if err := qc.store.UpdateQuestion(ctx.Request.Context(), &updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to update question")
		return
	}

	utils.InvalidateByPrefix(utils.KeyQuestionList)
	utils.InvalidateByPrefix(utils.KeyTagList)

	fresh, err := qc.store.QuestionByID(ctx.Request.Context(), id)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to load question")
		return
	}
	utils.Success(ctx, gin.H{"question": fresh.ApplyViewer(viewerID)})
}

// Delete removes a question and everything under it. Author-only.
func (qc *QuestionController) Delete(ctx *gin.Context) {
	viewerID, ok := viewer(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	existing, err := qc.store.QuestionByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50017, "failed to load question")
		return
	}
	if existing.UserID != viewerID {
		utils.Error(ctx, http.StatusForbidden, 40311, "only the author can delete a question")
		return
	}

	if err := qc.store.DeleteQuestion(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50018, "failed to delete question")
		return
	}

	utils.InvalidateByPrefix(utils.KeyQuestionList)
	utils.InvalidateByPrefix(utils.KeyTagList)
	utils.Success(ctx, gin.H{"message": "question deleted"})
}

// CreateComment attaches a comment to a question and returns the updated,
// enriched question.
func (qc *QuestionController) CreateComment(ctx *gin.Context) {
	viewerID, ok := viewer(ctx)
	if !ok {
		return
	}
	if !qc.gate.Can(viewerID, middleware.ActionCommentCreate) {
		utils.Error(ctx, http.StatusForbidden, 40312, "not allowed to comment")
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, 40016, err)
		return
	}
	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.ErrorFields(ctx, 40017, "invalid request payload", []utils.FieldError{
			{Field: "content", Message: "must be non-empty"},
		})
		return
	}

	comment := models.Comment{QuestionID: &id, UserID: viewerID, Content: content}
	if err := qc.store.CreateComment(ctx.Request.Context(), &comment); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50019, "failed to create comment")
		return
	}

	utils.InvalidateByPrefix(utils.KeyQuestionList)

	fresh, err := qc.store.QuestionByID(ctx.Request.Context(), id)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load question")
		return
	}
	utils.Success(ctx, gin.H{"question": fresh.ApplyViewer(viewerID)})
}

// DeleteComment removes a question comment after checking it belongs to the
// question and to the acting viewer.
func (qc *QuestionController) DeleteComment(ctx *gin.Context) {
	viewerID, ok := viewer(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	commentID, ok := parseID(ctx, "commentId")
	if !ok {
		return
	}

	q, err := qc.store.QuestionByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load question")
		return
	}

	var target *models.Comment
	for i := range q.Comments {
		if q.Comments[i].ID == commentID {
			target = &q.Comments[i]
			break
		}
	}
	if target == nil {
		utils.Error(ctx, http.StatusNotFound, 40406, "comment not found")
		return
	}
	if target.UserID != viewerID {
		utils.Error(ctx, http.StatusForbidden, 40313, "only the author can delete a comment")
		return
	}

	if err := qc.store.DeleteComment(ctx.Request.Context(), store.Ref{QuestionID: id}, commentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40406, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to delete comment")
		return
	}

	utils.InvalidateByPrefix(utils.KeyQuestionList)
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = utils.SanitizePlain(strings.ToLower(strings.TrimSpace(t)))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
