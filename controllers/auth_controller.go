package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/askora/askora/config"
	"github.com/askora/askora/models"
	"github.com/askora/askora/store"
	"github.com/askora/askora/utils"
)

// AuthController handles registration, login, and the current-viewer lookup.
type AuthController struct {
	users store.UserStore
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(users store.UserStore) *AuthController {
	return &AuthController{users: users}
}

type credentialsBody struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// Register creates an account and returns a signed token.
func (ac *AuthController) Register(ctx *gin.Context) {
	var req credentialsBody
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, 40030, err)
		return
	}

	username := utils.SanitizePlain(strings.TrimSpace(req.Username))
	if username == "" {
		utils.ErrorFields(ctx, 40031, "invalid request payload", []utils.FieldError{
			{Field: "username", Message: "must be non-empty"},
		})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to create account")
		return
	}

	u := models.User{Username: username, Email: req.Email, PasswordHash: hash}
	if err := ac.users.CreateUser(ctx.Request.Context(), &u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			utils.Error(ctx, http.StatusConflict, 40910, "username already taken")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to create account")
		return
	}

	token, err := utils.GenerateToken(u.ID, u.Username, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to issue token")
		return
	}
	utils.Created(ctx, gin.H{"token": token, "user": u})
}

// Login verifies credentials and returns a signed token. Unknown username and
// wrong password are indistinguishable to the caller.
func (ac *AuthController) Login(ctx *gin.Context) {
	var req credentialsBody
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, 40032, err)
		return
	}

	u, err := ac.users.UserByName(ctx.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, 40120, "invalid credentials")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50073, "login failed")
		return
	}
	if !utils.CheckPassword(u.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "invalid credentials")
		return
	}

	token, err := utils.GenerateToken(u.ID, u.Username, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to issue token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": u})
}

// Me returns the account behind the presented token.
func (ac *AuthController) Me(ctx *gin.Context) {
	viewerID, ok := viewer(ctx)
	if !ok {
		return
	}

	u, err := ac.users.UserByID(ctx.Request.Context(), viewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "account not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to load account")
		return
	}
	utils.Success(ctx, gin.H{"user": u})
}

func tokenTTL() time.Duration {
	return time.Duration(config.Get().TokenTTL) * time.Minute
}
