package app

import (
	httpH "github.com/yungbote/model3d-backend/internal/http/handlers"
	httpMW "github.com/yungbote/model3d-backend/internal/http/middleware"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

type Handlers struct {
	Model3D *httpH.Model3DHandler
	Health  *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Model3D: httpH.NewModel3DHandler(log, serviceset.Model3D),
		Health:  httpH.NewHealthHandler(db),
	}
}

// wireAuth returns nil when no JWT secret is configured.
func wireAuth(log *logger.Logger, cfg Config) *httpMW.AuthMiddleware {
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY not set; model3d routes are unauthenticated")
		return nil
	}
	return httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey)
}
