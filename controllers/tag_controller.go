package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/askora/askora/store"
	"github.com/askora/askora/utils"
)

// TagController serves the distinct tag listing.
type TagController struct {
	store store.ContentStore
}

// NewTagController creates a new TagController instance.
func NewTagController(s store.ContentStore) *TagController {
	return &TagController{store: s}
}

// List returns every distinct tag in use.
func (tc *TagController) List(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(utils.KeyTagList); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	tags, err := tc.store.ListTags(ctx.Request.Context())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to list tags")
		return
	}

	payload := gin.H{"tags": tags}
	utils.CacheSetJSON(utils.KeyTagList, utils.JSONResponse{Code: 0, Message: "success", Data: payload})
	utils.Success(ctx, payload)
}
