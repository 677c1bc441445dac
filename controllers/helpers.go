package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/askora/askora/middleware"
	"github.com/askora/askora/utils"
)

// parseID validates a path identifier is a well-formed positive integer. On
// failure it writes a 400 and returns false.
func parseID(ctx *gin.Context, param string) (uint, bool) {
	raw := strings.TrimSpace(ctx.Param(param))
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.ErrorFields(ctx, 40001, "invalid identifier", []utils.FieldError{
			{Field: param, Message: "must be a positive integer"},
		})
		return 0, false
	}
	return uint(id), true
}

// viewer pulls the resolved viewer out of the context, rejecting the request
// when identity resolution produced nothing.
func viewer(ctx *gin.Context) (uint, bool) {
	id, ok := middleware.ViewerID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "authentication required")
		return 0, false
	}
	return id, true
}

// bindError writes a structured 400 with per-field detail for binding and
// validation failures.
func bindError(ctx *gin.Context, code int, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]utils.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, utils.FieldError{
				Field:   fe.Field(),
				Message: "failed validation on '" + fe.Tag() + "'",
			})
		}
		utils.ErrorFields(ctx, code, "invalid request payload", fields)
		return
	}
	utils.Error(ctx, http.StatusBadRequest, code, "invalid request payload")
}
