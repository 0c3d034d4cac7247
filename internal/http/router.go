package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/model3d-backend/internal/http/handlers"
	httpMW "github.com/yungbote/model3d-backend/internal/http/middleware"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	// AuthMiddleware is optional; without it the model3d routes are public.
	AuthMiddleware *httpMW.AuthMiddleware
	Metrics        httpMW.APIMetrics
	MetricsHandler http.Handler

	Model3DHandler *httpH.Model3DHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	model3d := r.Group("/model3d-animal")
	{
		if cfg.AuthMiddleware != nil {
			model3d.Use(cfg.AuthMiddleware.RequireAuth())
		}
		if cfg.Model3DHandler != nil {
			model3d.POST("/createTaskV25", cfg.Model3DHandler.CreateTaskV25)
			model3d.POST("/uploadPicture", cfg.Model3DHandler.UploadPicture)
			model3d.GET("/animal/:animalId", cfg.Model3DHandler.GetByAnimal)
		}
	}

	return r
}
