package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/model3d-backend/internal/data/repos"
	types "github.com/yungbote/model3d-backend/internal/domain"
	"github.com/yungbote/model3d-backend/internal/platform/apierr"
	"github.com/yungbote/model3d-backend/internal/platform/dbctx"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

const (
	MessageTaskCreated     = "Task created"
	MessageTaskNoID        = "Task creation failed, " + FailureNoTaskID
	MessageImagePublished  = "Image uploaded"
	bestEffortWriteTimeout = 10 * time.Second
)

// TaskResult is what a caller learns about one task submission.
type TaskResult struct {
	Success    bool
	Message    string
	TaskID     *string
	ImageURL   string
	MeshURL    *string
	PreviewURL *string
}

// GenerationRecordView is the read model of an animal's current record.
type GenerationRecordView struct {
	ID               uuid.UUID
	AnimalID         uint
	AnimalName       string
	State            string
	PhotoOriginalURL *string
	MeshURL          *string
	TaskID           *string
	FailureReason    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProviderInfo is stamped into every record's metadata.
type ProviderInfo struct {
	Name    string
	Options map[string]any
}

type Model3DService interface {
	CreateTask(ctx context.Context, imageURL string, animalID *uint) (TaskResult, error)
	PublishAndGetURL(ctx context.Context, filename string, data []byte) (string, error)
	GetByAnimal(ctx context.Context, animalID uint) (*GenerationRecordView, error)
}

type model3DService struct {
	log      *logger.Logger
	animals  AnimalDirectory
	records  GenerationRecordService
	reader   repos.GenerationRecordRepo
	mesh     MeshGateway
	images   ImagePublisher
	provider ProviderInfo
	metrics  Metrics
}

func NewModel3DService(
	log *logger.Logger,
	animals AnimalDirectory,
	records GenerationRecordService,
	reader repos.GenerationRecordRepo,
	mesh MeshGateway,
	images ImagePublisher,
	provider ProviderInfo,
	metrics Metrics,
) Model3DService {
	return &model3DService{
		log:      log.With("service", "Model3DService"),
		animals:  animals,
		records:  records,
		reader:   reader,
		mesh:     mesh,
		images:   images,
		provider: provider,
		metrics:  metricsOrNop(metrics),
	}
}

func (s *model3DService) CreateTask(ctx context.Context, imageURL string, animalID *uint) (TaskResult, error) {
	imageURL = strings.TrimSpace(imageURL)
	result := TaskResult{ImageURL: imageURL}

	if imageURL == "" {
		err := apierr.Validation("image_url_required", "image_url is required")
		result.Message = err.Error()
		s.metrics.IncTask("invalid")
		return result, err
	}
	if animalID == nil || *animalID == 0 {
		err := apierr.Validation("animal_id_required", "animal_id is required")
		result.Message = err.Error()
		s.metrics.IncTask("invalid")
		return result, err
	}
	id := *animalID

	ctx, span := otel.Tracer("services").Start(ctx, "Model3DService.CreateTask")
	defer span.End()
	span.SetAttributes(attribute.Int64("animal.id", int64(id)))

	animal, err := s.animals.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		err = fmt.Errorf("lookup animal %d: %w", id, err)
		result.Message = err.Error()
		span.RecordError(err)
		s.metrics.IncTask("error")
		return result, err
	}
	if animal == nil {
		err := apierr.NotFound("animal_not_found", fmt.Sprintf("animal %d not found", id))
		result.Message = err.Error()
		s.metrics.IncTask("not_found")
		return result, err
	}

	raw, err := s.mesh.CreateTask(ctx, imageURL)
	if err != nil {
		return s.failUpstream(ctx, result, id, err)
	}
	outcome, err := InterpretTaskReply(raw)
	if err != nil {
		return s.failUpstream(ctx, result, id, err)
	}

	rec, err := s.records.Upsert(ctx, id, outcome, s.metadata(""))
	if err != nil {
		result.Message = err.Error()
		span.RecordError(err)
		s.metrics.IncTask("error")
		return result, err
	}

	if !outcome.Succeeded() {
		s.log.Warn("Mesh provider reply carried no task id",
			"animal_id", id,
			"record_id", rec.ID,
		)
		span.SetStatus(codes.Error, "no task id")
		s.metrics.IncTask("failure")
		result.Message = MessageTaskNoID
		return result, nil
	}

	taskID := outcome.TaskID()
	result.Success = true
	result.Message = MessageTaskCreated
	result.TaskID = &taskID
	result.MeshURL = outcome.MeshURL()
	result.PreviewURL = outcome.PreviewURL()
	span.SetAttributes(attribute.String("task.id", taskID))
	s.metrics.IncTask("success")
	s.log.Info("Mesh generation task created",
		"animal_id", id,
		"animal_name", animal.Name,
		"task_id", taskID,
		"record_id", rec.ID,
	)
	return result, nil
}

// failUpstream records an Error state for the animal on a best-effort basis
// and returns the original error unchanged.
func (s *model3DService) failUpstream(ctx context.Context, result TaskResult, animalID uint, cause error) (TaskResult, error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(cause)
	span.SetStatus(codes.Error, string(apierr.KindOf(cause)))
	s.metrics.IncTask("error")

	s.log.Warn("Mesh task submission failed",
		"animal_id", animalID,
		"kind", apierr.KindOf(cause),
		"code", apierr.CodeOf(cause),
		"error", cause,
	)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bestEffortWriteTimeout)
	defer cancel()
	if _, err := s.records.Upsert(writeCtx, animalID, types.Failure(cause.Error()), s.metadata(cause.Error())); err != nil {
		s.metrics.IncBestEffortFailure()
		s.log.Error("Could not record Error state after failed submission (ignored)",
			"animal_id", animalID,
			"error", err,
		)
	}

	result.Success = false
	result.Message = "Task creation failed: " + cause.Error()
	return result, cause
}

func (s *model3DService) metadata(failureReason string) types.RecordMetadata {
	return types.RecordMetadata{
		Provider:      s.provider.Name,
		Options:       s.provider.Options,
		FailureReason: failureReason,
	}
}

func (s *model3DService) PublishAndGetURL(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apierr.Validation("file_required", "file is required")
	}
	ctx, span := otel.Tracer("services").Start(ctx, "Model3DService.PublishAndGetURL")
	defer span.End()
	span.SetAttributes(attribute.Int("image.bytes", len(data)))

	url, err := s.images.Publish(ctx, filename, data)
	if err != nil {
		span.RecordError(err)
		s.log.Warn("Image publishing failed", "filename", filename, "code", apierr.CodeOf(err), "error", err)
		return "", err
	}
	return url, nil
}

func (s *model3DService) GetByAnimal(ctx context.Context, animalID uint) (*GenerationRecordView, error) {
	if animalID == 0 {
		return nil, apierr.Validation("animal_id_required", "animal_id is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	animal, err := s.animals.GetByID(dbc, animalID)
	if err != nil {
		return nil, fmt.Errorf("lookup animal %d: %w", animalID, err)
	}
	if animal == nil {
		return nil, apierr.NotFound("animal_not_found", fmt.Sprintf("animal %d not found", animalID))
	}
	rec, err := s.reader.GetByAnimalID(dbc, animalID)
	if err != nil {
		return nil, fmt.Errorf("lookup generation record for animal %d: %w", animalID, err)
	}
	if rec == nil {
		return nil, apierr.NotFound("generation_record_not_found",
			fmt.Sprintf("no generation record for animal %d", animalID))
	}
	return toView(rec, animal), nil
}

func toView(rec *types.GenerationRecord, animal *types.Animal) *GenerationRecordView {
	v := &GenerationRecordView{
		ID:               rec.ID,
		AnimalID:         rec.AnimalID,
		AnimalName:       animal.Name,
		PhotoOriginalURL: rec.PhotoOriginalURL,
		MeshURL:          rec.MeshURL,
		TaskID:           rec.TaskID,
		FailureReason:    rec.Meta().FailureReason,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
	if rec.State != nil {
		v.State = rec.State.Name
	}
	return v
}
