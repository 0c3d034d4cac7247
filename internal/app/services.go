package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/model3d-backend/internal/observability"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
	"github.com/yungbote/model3d-backend/internal/platform/tripo"
	"github.com/yungbote/model3d-backend/internal/services"
)

type Services struct {
	GenerationState  services.GenerationStateService
	GenerationRecord services.GenerationRecordService
	Model3D          services.Model3DService
}

func wireServices(db *gorm.DB, log *logger.Logger, reposet Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	states := services.NewGenerationStateService(log, reposet.GenerationState)
	records := services.NewGenerationRecordService(db, log, states, reposet.GenerationRecord, clients.Locker, metrics)
	model3d := services.NewModel3DService(
		log,
		reposet.Animal,
		records,
		reposet.GenerationRecord,
		clients.Tripo,
		clients.Publisher,
		services.ProviderInfo{Name: "tripo", Options: tripo.Options()},
		metrics,
	)

	return Services{
		GenerationState:  states,
		GenerationRecord: records,
		Model3D:          model3d,
	}
}
