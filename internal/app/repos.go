package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/model3d-backend/internal/data/repos"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

type Repos struct {
	Animal           repos.AnimalRepo
	GenerationState  repos.GenerationStateRepo
	GenerationRecord repos.GenerationRecordRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Animal:           repos.NewAnimalRepo(db, log),
		GenerationState:  repos.NewGenerationStateRepo(db, log),
		GenerationRecord: repos.NewGenerationRecordRepo(db, log),
	}
}
