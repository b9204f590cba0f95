package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

// PublicCache stores serialized public result views by profile slug.
//
// Every Invalidate bumps the slug's generation. A reader takes Generation
// before loading from the database and hands it to Set, which drops the write
// when an invalidation happened in between.
type PublicCache interface {
	Generation(ctx context.Context, slug string) (int64, error)
	Get(ctx context.Context, slug string) ([]byte, bool, error)
	Set(ctx context.Context, slug string, raw []byte, generation int64) error
	Invalidate(ctx context.Context, slug string) error
	Close() error
}

// generationTTL outlives any entry so a reader never sees a reset counter
// while its snapshot could still be cached.
const generationTTL = 24 * time.Hour

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

type publicCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	ttl    time.Duration
	prefix string
}

// NewPublicCache connects to Redis. An empty address yields the no-op cache.
func NewPublicCache(log *logger.Logger, cfg Config) (PublicCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		log.Info("REDIS_ADDR not set; public result cache disabled")
		return NoopCache{}, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "typecast:public:"
	}
	return &publicCache{
		log:    log.With("service", "RedisPublicCache"),
		rdb:    rdb,
		ttl:    ttl,
		prefix: prefix,
	}, nil
}

func (c *publicCache) key(slug string) string {
	return c.prefix + strings.ToLower(strings.TrimSpace(slug))
}

func (c *publicCache) genKey(slug string) string {
	return c.key(slug) + ":gen"
}

func (c *publicCache) Generation(ctx context.Context, slug string) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey(slug)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *publicCache) Get(ctx context.Context, slug string) ([]byte, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(slug)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c *publicCache) Set(ctx context.Context, slug string, raw []byte, generation int64) error {
	genKey := c.genKey(slug)
	err := c.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return err
		}
		if cur != generation {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(p goredis.Pipeliner) error {
			p.Set(ctx, c.key(slug), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, errStale) || errors.Is(err, goredis.TxFailedErr) {
		c.log.Debug("skipping stale public cache write", "slug", slug, "generation", generation)
		return nil
	}
	return err
}

func (c *publicCache) Invalidate(ctx context.Context, slug string) error {
	if slug == "" {
		return nil
	}
	genKey := c.genKey(slug)
	_, err := c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Expire(ctx, genKey, generationTTL)
		p.Del(ctx, c.key(slug))
		return nil
	})
	return err
}

func (c *publicCache) Close() error {
	return c.rdb.Close()
}

var errStale = errors.New("public cache generation moved")

// NoopCache never hits.
type NoopCache struct{}

func (NoopCache) Generation(context.Context, string) (int64, error) { return 0, nil }
func (NoopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NoopCache) Set(context.Context, string, []byte, int64) error  { return nil }
func (NoopCache) Invalidate(context.Context, string) error          { return nil }
func (NoopCache) Close() error                                      { return nil }
