package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/model3d-backend/internal/data/repos/animal"
	"github.com/yungbote/model3d-backend/internal/data/repos/model3d"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

type AnimalRepo = animal.AnimalRepo

type GenerationStateRepo = model3d.GenerationStateRepo
type GenerationRecordRepo = model3d.GenerationRecordRepo

func NewAnimalRepo(db *gorm.DB, baseLog *logger.Logger) AnimalRepo {
	return animal.NewAnimalRepo(db, baseLog)
}

func NewGenerationStateRepo(db *gorm.DB, baseLog *logger.Logger) GenerationStateRepo {
	return model3d.NewGenerationStateRepo(db, baseLog)
}

func NewGenerationRecordRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRecordRepo {
	return model3d.NewGenerationRecordRepo(db, baseLog)
}
