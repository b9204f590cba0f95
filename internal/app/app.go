package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/typecast-backend/internal/data/aggregates"
	"github.com/yungbote/typecast-backend/internal/data/db"
	"github.com/yungbote/typecast-backend/internal/data/repos"
	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/http"
	"github.com/yungbote/typecast-backend/internal/observability"
	"github.com/yungbote/typecast-backend/internal/platform/envutil"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Store    *db.Service
	Router   *gin.Engine
	Cfg      Config
	Repos    repos.Set
	Services Services
	Clients  Clients
	Stats    *aggregates.LogHooks

	shutdownOTel func(context.Context) error
}

// New loads configuration from the environment, opens the database and wires
// every layer. It does not migrate; call Migrate before serving.
func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	shutdown := observability.InitOTel(ctx, log, cfg.Otel)

	store, err := db.Open(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = store.Close()
		log.Sync()
		return nil, err
	}

	stats := aggregates.NewLogHooks(log)
	reposet := wireRepos(store.DB(), log)
	serviceset, err := wireServices(store.DB(), log, cfg, reposet, clients, stats)
	if err != nil {
		clients.Close()
		_ = store.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, cfg, serviceset, store, stats)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware, stats)

	return &App{
		Log:          log,
		Store:        store,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Stats:        stats,
		shutdownOTel: shutdown,
	}, nil
}

func (a *App) Migrate() error {
	a.Log.Info("Running migrations...", "driver", a.Store.Driver())
	if err := db.AutoMigrateAll(a.Store.DB()); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func (a *App) Seed(ctx context.Context) (*types.Quiz, error) {
	return a.Services.Content.Seed(ctx)
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Cfg.AutoSeed {
		if _, err := a.Seed(ctx); err != nil {
			return fmt.Errorf("auto seed: %w", err)
		}
	}
	srv := &http.Server{Engine: a.Router}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
	return srv.Run(ctx, a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Log.Warn("closing database", "error", err)
		}
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(context.Background()); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
