package app

import (
	server "github.com/yungbote/model3d-backend/internal/http"
	"github.com/yungbote/model3d-backend/internal/observability"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlerset Handlers, metrics *observability.Metrics) *server.Server {
	log.Info("Wiring router...")
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return server.NewServer(cfg.Addr(), server.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.AllowedOrigins,
		AuthMiddleware: wireAuth(log, cfg),
		Metrics:        metrics,
		MetricsHandler: metrics.Handler(),
		Model3DHandler: handlerset.Model3D,
		HealthHandler:  handlerset.Health,
	})
}
