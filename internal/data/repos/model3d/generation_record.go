package model3d

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/model3d-backend/internal/domain"
	"github.com/yungbote/model3d-backend/internal/platform/dbctx"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

type GenerationRecordRepo interface {
	GetByAnimalID(dbc dbctx.Context, animalID uint) (*types.GenerationRecord, error)
	// Upsert writes one row keyed by animal_id. An existing row keeps its id
	// and created_at; everything the outcome controls is overwritten.
	Upsert(dbc dbctx.Context, rec *types.GenerationRecord) error
}

type generationRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationRecordRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRecordRepo {
	return &generationRecordRepo{db: db, log: baseLog.With("repo", "GenerationRecordRepo")}
}

// GetByAnimalID returns nil, nil when the animal has no record yet.
func (r *generationRecordRepo) GetByAnimalID(dbc dbctx.Context, animalID uint) (*types.GenerationRecord, error) {
	if animalID == 0 {
		return nil, nil
	}
	var rec types.GenerationRecord
	err := dbc.DB(r.db).
		Preload("State").
		Preload("Animal").
		Where("animal_id = ?", animalID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *generationRecordRepo) Upsert(dbc dbctx.Context, rec *types.GenerationRecord) error {
	if rec == nil || rec.AnimalID == 0 {
		return fmt.Errorf("generation record requires an animal id")
	}
	if rec.StateID == 0 {
		return fmt.Errorf("generation record requires a state id")
	}
	r.log.Debug("Upserting generation record", "animal_id", rec.AnimalID, "state_id", rec.StateID, "in_tx", dbc.InTx())
	return dbc.DB(r.db).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "animal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"photo_original_url",
				"url_modelo",
				"state_id",
				"task_id",
				"metadata",
				"updated_at",
			}),
		}).
		Create(rec).Error
}
