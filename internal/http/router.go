package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/typecast-backend/internal/data/aggregates"
	httpH "github.com/yungbote/typecast-backend/internal/http/handlers"
	httpMW "github.com/yungbote/typecast-backend/internal/http/middleware"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Hooks          aggregates.Hooks
	AuthMiddleware *httpMW.AuthMiddleware

	QuizHandler    *httpH.QuizHandler
	ResultHandler  *httpH.ResultHandler
	SharingHandler *httpH.SharingHandler
	ProfileHandler *httpH.ProfileHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Hooks))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	optional := api.Group("/")
	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		optional.Use(cfg.AuthMiddleware.OptionalAuth())
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Quiz + sessions
	if cfg.QuizHandler != nil {
		api.GET("/quizzes/:id", cfg.QuizHandler.GetQuiz)
		optional.POST("/quizzes/:id/sessions", cfg.QuizHandler.StartSession)
		api.PUT("/sessions/:id/responses", cfg.QuizHandler.SubmitResponse)
		api.POST("/sessions/:id/complete", cfg.QuizHandler.CompleteSession)
		api.GET("/sessions/:id/retake-prefill", cfg.QuizHandler.GetRetakePrefill)
	}

	// Results
	if cfg.ResultHandler != nil {
		optional.POST("/sessions/:id/result", cfg.ResultHandler.CalculateResult)
		api.GET("/sessions/:id/result", cfg.ResultHandler.GetResult)
		protected.POST("/sessions/:id/link", cfg.ResultHandler.LinkResult)
		protected.GET("/me/result", cfg.ResultHandler.GetMyResult)
	}

	// Sharing
	if cfg.SharingHandler != nil {
		protected.POST("/sessions/:id/sharing", cfg.SharingHandler.ToggleSharing)
		api.GET("/public/:slug", cfg.SharingHandler.GetPublicResult)
		api.POST("/public/:slug/passcode", cfg.SharingHandler.ValidatePasscode)
	}

	// Profile
	if cfg.ProfileHandler != nil {
		protected.GET("/me", cfg.ProfileHandler.GetMe)
		protected.PUT("/me/slug", cfg.ProfileHandler.ClaimSlug)
		protected.PATCH("/me/onboarding", cfg.ProfileHandler.UpdateOnboarding)
		api.GET("/slugs/:slug/availability", cfg.ProfileHandler.CheckSlugAvailability)
	}

	return r
}
