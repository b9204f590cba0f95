package app

import (
	"time"

	"github.com/yungbote/typecast-backend/internal/clients/redis"
	"github.com/yungbote/typecast-backend/internal/data/db"
	"github.com/yungbote/typecast-backend/internal/observability"
	"github.com/yungbote/typecast-backend/internal/platform/envutil"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
	"github.com/yungbote/typecast-backend/internal/services"
)

type Config struct {
	HTTPAddr    string
	LogMode     string
	AutoSeed    bool
	CORSOrigins []string
	IPHashSalt  string

	DB       db.Config
	Redis    redis.Config
	Identity services.IdentityConfig
	Sharing  services.SharingConfig
	Otel     observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		AutoSeed:    envutil.Bool("AUTO_SEED", false),
		CORSOrigins: envutil.List("CORS_ALLOW_ORIGINS", nil),
		IPHashSalt:  envutil.String("IP_HASH_SALT", ""),
		DB: db.Config{
			Driver: envutil.String("DB_DRIVER", db.DriverPostgres),
			Postgres: db.PostgresConfig{
				Host:     envutil.String("POSTGRES_HOST", "localhost"),
				Port:     envutil.Int("POSTGRES_PORT", 5432),
				User:     envutil.String("POSTGRES_USER", "postgres"),
				Password: envutil.String("POSTGRES_PASSWORD", ""),
				Name:     envutil.String("POSTGRES_NAME", "typecast"),
				SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			},
			SQLitePath: envutil.String("SQLITE_PATH", "typecast.db"),
		},
		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			TTL:      envutil.Duration("PUBLIC_CACHE_TTL", 5*time.Minute),
		},
		Identity: services.IdentityConfig{
			SecretKey: envutil.String("JWT_SECRET_KEY", ""),
			Issuer:    envutil.String("JWT_ISSUER", ""),
			Leeway:    envutil.Duration("JWT_LEEWAY", 30*time.Second),
		},
		Sharing: services.SharingConfig{
			PasscodeEnabled: envutil.Bool("SHARING_PASSCODE_ENABLED", false),
		},
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "typecast-backend"),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development"),
			Version:     envutil.String("OTEL_SERVICE_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1),
		},
	}
	if log != nil {
		if cfg.Identity.SecretKey == "" {
			log.Warn("JWT_SECRET_KEY not set; authenticated routes will reject every request")
		}
		log.Info("config loaded",
			"http_addr", cfg.HTTPAddr,
			"db_driver", cfg.DB.Driver,
			"auto_seed", cfg.AutoSeed,
			"passcode_gate", cfg.Sharing.PasscodeEnabled,
			"otel", cfg.Otel.Enabled,
		)
	}
	return cfg
}
