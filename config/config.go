package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port      string
	DBURL     string
	JWTSecret string
	JWTTTL    time.Duration

	AdminEmail        string
	AdminPasswordHash string

	CORSOrigin string
	GinMode    string

	MediaRoot       string
	PublicBaseURL   string
	MediaBucket     string
	UploadMaxBytes  int64
	UploadMaxPixels int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	AnalyticsRate  float64
	AnalyticsBurst int

	LogLevel     string
	LogFormat    string
	GormLogLevel string
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("JWT_TTL", "12h")
	v.SetDefault("CORS_ORIGIN", "http://localhost:3000")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("MEDIA_ROOT", "./media")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080/media")
	v.SetDefault("MEDIA_BUCKET", "portfolio-images")
	v.SetDefault("UPLOAD_MAX_BYTES", 25<<20)
	v.SetDefault("UPLOAD_MAX_PIXELS", 100_000_000)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "1m")
	v.SetDefault("ANALYTICS_RATE", 5)
	v.SetDefault("ANALYTICS_BURST", 20)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("GORM_LOG_LEVEL", "warn")
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found. Using system environment variables.")
	}

	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	cfg := &Config{
		Port:      v.GetString("PORT"),
		DBURL:     v.GetString("DB_URL"),
		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		AdminEmail:        strings.TrimSpace(v.GetString("ADMIN_EMAIL")),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),

		CORSOrigin: v.GetString("CORS_ORIGIN"),
		GinMode:    v.GetString("GIN_MODE"),

		MediaRoot:       v.GetString("MEDIA_ROOT"),
		PublicBaseURL:   strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		MediaBucket:     v.GetString("MEDIA_BUCKET"),
		UploadMaxBytes:  v.GetInt64("UPLOAD_MAX_BYTES"),
		UploadMaxPixels: v.GetInt("UPLOAD_MAX_PIXELS"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		CacheTTL:      v.GetDuration("CACHE_TTL"),

		AnalyticsRate:  v.GetFloat64("ANALYTICS_RATE"),
		AnalyticsBurst: v.GetInt("ANALYTICS_BURST"),

		LogLevel:     v.GetString("LOG_LEVEL"),
		LogFormat:    v.GetString("LOG_FORMAT"),
		GormLogLevel: v.GetString("GORM_LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DBURL == "" {
		return missing("DB_URL")
	}
	if c.JWTSecret == "" {
		return missing("JWT_SECRET")
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.UploadMaxPixels <= 0 {
		return fmt.Errorf("UPLOAD_MAX_PIXELS must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func missing(key string) error {
	return fmt.Errorf("missing required environment variable: %s", key)
}
