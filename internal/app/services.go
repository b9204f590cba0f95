package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/typecast-backend/internal/data/aggregates"
	"github.com/yungbote/typecast-backend/internal/data/repos"
	"github.com/yungbote/typecast-backend/internal/modules/personality"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
	"github.com/yungbote/typecast-backend/internal/services"
)

type Services struct {
	Identity services.IdentityVerifier
	Profiles services.ProfileService
	Sessions services.SessionService
	Results  services.ResultService
	Retake   services.RetakeService
	Sharing  services.SharingService
	Content  services.ContentService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r repos.Set, clients Clients, hooks aggregates.Hooks) (Services, error) {
	log.Info("Wiring services...")
	catalog, err := personality.DefaultCatalog()
	if err != nil {
		return Services{}, fmt.Errorf("load personality catalog: %w", err)
	}

	profiles := services.NewProfileService(db, log, r.UserProfile, clients.PublicCache, hooks)
	return Services{
		Identity: services.NewIdentityVerifier(log, cfg.Identity),
		Profiles: profiles,
		Sessions: services.NewSessionService(db, log, r.Quiz, r.Session, r.Response),
		Results: services.NewResultService(db, log, services.ResultServiceDeps{
			Quizzes:   r.Quiz,
			Sessions:  r.Session,
			Responses: r.Response,
			Results:   r.Result,
			Latest:    r.LatestResult,
			Profiles:  profiles,
			Evaluator: personality.NewEvaluator(catalog),
			Cache:     clients.PublicCache,
			Hooks:     hooks,
		}),
		Retake: services.NewRetakeService(db, log, r.Quiz, r.Session, r.Response, r.Result, r.UserProfile),
		Sharing: services.NewSharingService(db, log, cfg.Sharing, services.SharingServiceDeps{
			Sessions: r.Session,
			Results:  r.Result,
			Latest:   r.LatestResult,
			Users:    r.UserProfile,
			Profiles: profiles,
			Catalog:  catalog,
			Cache:    clients.PublicCache,
			Hooks:    hooks,
		}),
		Content: services.NewContentService(db, log, r.Quiz, hooks),
	}, nil
}
