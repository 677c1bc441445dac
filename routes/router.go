package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/askora/askora/config"
	"github.com/askora/askora/controllers"
	"github.com/askora/askora/middleware"
	"github.com/askora/askora/store"
	"github.com/askora/askora/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(s store.Store) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(middleware.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Use(middleware.ResolveViewer())

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	gate := middleware.NewGate(cfg)
	authController := controllers.NewAuthController(s)
	questionController := controllers.NewQuestionController(s, gate)
	answerController := controllers.NewAnswerController(s, gate)
	reactionController := controllers.NewReactionController(s, gate)
	tagController := controllers.NewTagController(s)

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", middleware.ViewerRequired(), authController.Me)

	r.GET("/tags", tagController.List)

	questions := r.Group("/questions")
	questions.GET("", questionController.List)
	questions.GET("/list/:type", questionController.List)
	questions.GET("/:id", questionController.Get)
	questions.GET("/:id/answers/:answerId", answerController.Get)

	protected := r.Group("/questions")
	protected.Use(middleware.ViewerRequired(), middleware.RateLimitMiddleware())
	protected.POST("", questionController.Create)
	// Updates go through POST, with PUT kept as an alias.
	protected.POST("/:id", questionController.Update)
	protected.PUT("/:id", questionController.Update)
	protected.DELETE("/:id", questionController.Delete)
	protected.POST("/:id/comments", questionController.CreateComment)
	protected.DELETE("/:id/comments/:commentId", questionController.DeleteComment)

	protected.POST("/:id/answers", answerController.Create)
	protected.POST("/:id/answers/:answerId", answerController.Update)
	protected.PUT("/:id/answers/:answerId", answerController.Update)
	protected.DELETE("/:id/answers/:answerId", answerController.Delete)
	protected.POST("/:id/answers/:answerId/comments", answerController.CreateComment)
	protected.DELETE("/:id/answers/:answerId/comments/:commentId", answerController.DeleteComment)

	// Reaction endpoints are exposed as GET for link-style clients, with
	// POST aliases for API clients.
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		protected.Handle(method, "/:id/upvote", reactionController.UpvoteQuestion)
		protected.Handle(method, "/:id/downvote", reactionController.DownvoteQuestion)
		protected.Handle(method, "/:id/favorite", reactionController.Favorite)
		protected.Handle(method, "/:id/unfavorite", reactionController.Unfavorite)
		protected.Handle(method, "/:id/answers/:answerId/upvote", reactionController.UpvoteAnswer)
		protected.Handle(method, "/:id/answers/:answerId/downvote", reactionController.DownvoteAnswer)
		protected.Handle(method, "/:id/answers/:answerId/correct", reactionController.Correct)
		protected.Handle(method, "/:id/answers/:answerId/incorrect", reactionController.Incorrect)
	}

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
