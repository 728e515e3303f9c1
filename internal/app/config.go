package app

import (
	"strings"
	"time"

	"github.com/yungbote/sheetshare-backend/internal/platform/envutil"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port        string
	Environment string
	ServiceName string
	Version     string

	JWTSecretKey   string
	AccessTokenTTL time.Duration
	SecureCookie   bool

	AdminDirectoryPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	APIRateLimitPerMinute int

	MetricsEnabled  bool
	TracingEnabled  bool
	AllowedOrigins  []string
	AutoMigrate     bool
	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "sheetshare-backend"),
		Version:     envutil.String("APP_VERSION", "dev"),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", 7*24*time.Hour),
		SecureCookie:   envutil.Bool("COOKIE_SECURE", false),

		AdminDirectoryPath: envutil.String("ADMIN_DIRECTORY_PATH", ""),

		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),
		RedisChannel:  envutil.String("REDIS_CHANNEL", "sheetshare:sse"),

		APIRateLimitPerMinute: envutil.Int("API_RATE_LIMIT_PER_MINUTE", 60),

		MetricsEnabled:  envutil.Bool("METRICS_ENABLED", false),
		TracingEnabled:  envutil.Bool("OTEL_ENABLED", false),
		AllowedOrigins:  splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		AutoMigrate:     envutil.Bool("DB_AUTO_MIGRATE", true),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}
	if cfg.AdminDirectoryPath == "" {
		log.Warn("ADMIN_DIRECTORY_PATH not set, administrator sign-in is disabled")
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
