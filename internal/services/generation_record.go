package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/model3d-backend/internal/data/repos"
	types "github.com/yungbote/model3d-backend/internal/domain"
	"github.com/yungbote/model3d-backend/internal/platform/dbctx"
	"github.com/yungbote/model3d-backend/internal/platform/keylock"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

// GenerationRecordService owns every write to generation records.
type GenerationRecordService interface {
	// Upsert stores outcome as the animal's single record and returns the
	// stored row. Exactly one row is written per call.
	Upsert(ctx context.Context, animalID uint, outcome types.TaskOutcome, meta types.RecordMetadata) (*types.GenerationRecord, error)
}

type generationRecordService struct {
	db      *gorm.DB
	log     *logger.Logger
	states  GenerationStateService
	records repos.GenerationRecordRepo
	locker  keylock.Locker
	metrics Metrics
}

func NewGenerationRecordService(
	db *gorm.DB,
	log *logger.Logger,
	states GenerationStateService,
	records repos.GenerationRecordRepo,
	locker keylock.Locker,
	metrics Metrics,
) GenerationRecordService {
	if locker == nil {
		locker = keylock.NewLocal()
	}
	return &generationRecordService{
		db:      db,
		log:     log.With("service", "GenerationRecordService"),
		states:  states,
		records: records,
		locker:  locker,
		metrics: metricsOrNop(metrics),
	}
}

func animalLockKey(animalID uint) string {
	return "animal:" + strconv.FormatUint(uint64(animalID), 10)
}

func (s *generationRecordService) Upsert(ctx context.Context, animalID uint, outcome types.TaskOutcome, meta types.RecordMetadata) (*types.GenerationRecord, error) {
	if animalID == 0 {
		return nil, fmt.Errorf("generation record upsert: animal id is required")
	}
	ctx, span := otel.Tracer("services").Start(ctx, "GenerationRecordService.Upsert")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("animal.id", int64(animalID)),
		attribute.String("outcome", outcome.Kind().String()),
	)

	state, err := s.states.Resolve(dbctx.Context{Ctx: ctx}, outcome.TargetState())
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, animalLockKey(animalID))
	if err != nil {
		return nil, fmt.Errorf("lock animal %d: %w", animalID, err)
	}
	defer release()

	var stored *types.GenerationRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		existing, err := s.records.GetByAnimalID(dbc, animalID)
		if err != nil {
			return fmt.Errorf("lookup record: %w", err)
		}

		var next types.GenerationRecord
		if existing != nil {
			next = existing.WithOutcome(state, outcome, meta, time.Now().UTC())
		} else {
			next = types.NewGenerationRecord(animalID, state, outcome, meta)
		}

		if err := s.records.Upsert(dbc, &next); err != nil {
			return fmt.Errorf("upsert record: %w", err)
		}

		stored, err = s.records.GetByAnimalID(dbc, animalID)
		if err != nil {
			return fmt.Errorf("reload record: %w", err)
		}
		if stored == nil {
			return fmt.Errorf("record for animal %d vanished after upsert", animalID)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("generation record upsert for animal %d: %w", animalID, err)
	}

	s.metrics.IncRecordWrite(state.Name)
	s.log.Debug("Generation record stored",
		"animal_id", animalID,
		"record_id", stored.ID,
		"state", state.Name,
	)
	return stored, nil
}
