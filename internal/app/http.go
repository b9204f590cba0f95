package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/typecast-backend/internal/data/aggregates"
	"github.com/yungbote/typecast-backend/internal/data/db"
	"github.com/yungbote/typecast-backend/internal/http"
	httpH "github.com/yungbote/typecast-backend/internal/http/handlers"
	httpMW "github.com/yungbote/typecast-backend/internal/http/middleware"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Quiz    *httpH.QuizHandler
	Result  *httpH.ResultHandler
	Sharing *httpH.SharingHandler
	Profile *httpH.ProfileHandler
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Identity),
	}
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, store *db.Service, stats *aggregates.LogHooks) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(store, stats),
		Quiz:    httpH.NewQuizHandler(services.Sessions, services.Retake, cfg.IPHashSalt),
		Result:  httpH.NewResultHandler(services.Results, services.Sharing),
		Sharing: httpH.NewSharingHandler(services.Sharing),
		Profile: httpH.NewProfileHandler(services.Profiles),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, hooks aggregates.Hooks) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		CORSOrigins:    cfg.CORSOrigins,
		Hooks:          hooks,
		AuthMiddleware: middleware.Auth,
		QuizHandler:    handlers.Quiz,
		ResultHandler:  handlers.Result,
		SharingHandler: handlers.Sharing,
		ProfileHandler: handlers.Profile,
		HealthHandler:  handlers.Health,
	})
}
