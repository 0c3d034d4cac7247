package model3d

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/model3d-backend/internal/domain"
	"github.com/yungbote/model3d-backend/internal/platform/dbctx"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

type GenerationStateRepo interface {
	GetByName(dbc dbctx.Context, name string) (*types.GenerationState, error)
	List(dbc dbctx.Context) ([]*types.GenerationState, error)
	EnsureNames(dbc dbctx.Context, names []string) error
}

type generationStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationStateRepo(db *gorm.DB, baseLog *logger.Logger) GenerationStateRepo {
	return &generationStateRepo{db: db, log: baseLog.With("repo", "GenerationStateRepo")}
}

// GetByName returns nil, nil when the catalog lacks the name.
func (r *generationStateRepo) GetByName(dbc dbctx.Context, name string) (*types.GenerationState, error) {
	if name == "" {
		return nil, nil
	}
	var s types.GenerationState
	err := dbc.DB(r.db).Where("name = ?", name).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *generationStateRepo) List(dbc dbctx.Context) ([]*types.GenerationState, error) {
	var out []*types.GenerationState
	if err := dbc.DB(r.db).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *generationStateRepo) EnsureNames(dbc dbctx.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	rows := make([]*types.GenerationState, 0, len(names))
	for _, n := range names {
		rows = append(rows, &types.GenerationState{Name: n})
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}
