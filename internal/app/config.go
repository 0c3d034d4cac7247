package app

import (
	"strings"
	"time"

	"github.com/yungbote/model3d-backend/internal/data/db"
	"github.com/yungbote/model3d-backend/internal/observability"
	"github.com/yungbote/model3d-backend/internal/platform/envutil"
	"github.com/yungbote/model3d-backend/internal/platform/gcp"
	"github.com/yungbote/model3d-backend/internal/platform/imgbb"
	"github.com/yungbote/model3d-backend/internal/platform/keylock"
	"github.com/yungbote/model3d-backend/internal/platform/tripo"
)

const (
	PublishModeImgBB = "imgbb"
	PublishModeGCS   = "gcs"
)

type Config struct {
	Port    string
	LogMode string

	DB db.Config

	Tripo tripo.Config
	ImgBB imgbb.Config

	ImagePublishMode string
	ObjectStorage    gcp.ObjectStorageConfig

	// Redis is only used for the per-animal lock; empty Addr keeps it local.
	Redis keylock.RedisConfig

	JWTSecretKey   string
	AllowedOrigins []string

	Otel observability.OtelConfig

	ShutdownTimeout time.Duration
}

func LoadConfig() Config {
	return Config{
		Port:             envutil.String("PORT", "8080"),
		LogMode:          envutil.String("LOG_MODE", "development"),
		DB:               db.ConfigFromEnv(),
		Tripo:            tripo.ConfigFromEnv(),
		ImgBB:            imgbb.ConfigFromEnv(),
		ImagePublishMode: strings.ToLower(envutil.String("IMAGE_PUBLISH_MODE", PublishModeImgBB)),
		ObjectStorage:    gcp.ObjectStorageConfigFromEnv(),
		Redis: keylock.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Prefix:   envutil.String("ANIMAL_LOCK_PREFIX", "model3d:lock:"),
			TTL:      time.Duration(envutil.Int("ANIMAL_LOCK_TTL_SECONDS", 60)) * time.Second,
		},
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", ""),
		AllowedOrigins:  envutil.List("CORS_ALLOWED_ORIGINS", nil),
		Otel:            observability.OtelConfigFromEnv(),
		ShutdownTimeout: time.Duration(envutil.Int("SHUTDOWN_TIMEOUT_SECONDS", 15)) * time.Second,
	}
}

func (c Config) Addr() string {
	p := strings.TrimSpace(c.Port)
	if strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}
