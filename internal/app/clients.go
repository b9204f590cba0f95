package app

import (
	"fmt"

	"github.com/yungbote/typecast-backend/internal/clients/redis"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

type Clients struct {
	PublicCache redis.PublicCache
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	cache, err := redis.NewPublicCache(log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init public cache: %w", err)
	}
	return Clients{PublicCache: cache}, nil
}

func (c Clients) Close() {
	if c.PublicCache != nil {
		_ = c.PublicCache.Close()
	}
}
