package animal

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/model3d-backend/internal/domain"
	"github.com/yungbote/model3d-backend/internal/platform/dbctx"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

// AnimalRepo is the read side of the animal registry.
type AnimalRepo interface {
	Create(dbc dbctx.Context, animals []*types.Animal) ([]*types.Animal, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Animal, error)
}

type animalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnimalRepo(db *gorm.DB, baseLog *logger.Logger) AnimalRepo {
	return &animalRepo{db: db, log: baseLog.With("repo", "AnimalRepo")}
}

func (r *animalRepo) Create(dbc dbctx.Context, animals []*types.Animal) ([]*types.Animal, error) {
	if len(animals) == 0 {
		return []*types.Animal{}, nil
	}
	if err := dbc.DB(r.db).Create(&animals).Error; err != nil {
		return nil, err
	}
	return animals, nil
}

// GetByID returns nil, nil when no animal has that id.
func (r *animalRepo) GetByID(dbc dbctx.Context, id uint) (*types.Animal, error) {
	if id == 0 {
		return nil, nil
	}
	var a types.Animal
	err := dbc.DB(r.db).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
