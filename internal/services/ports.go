package services

import (
	"context"

	types "github.com/yungbote/model3d-backend/internal/domain"
	"github.com/yungbote/model3d-backend/internal/platform/dbctx"
)

// AnimalDirectory resolves animals by id. A missing animal is nil, nil.
type AnimalDirectory interface {
	GetByID(dbc dbctx.Context, id uint) (*types.Animal, error)
}

// StateCatalog resolves persisted states by their stored name. A missing
// name is nil, nil.
type StateCatalog interface {
	GetByName(dbc dbctx.Context, name string) (*types.GenerationState, error)
	EnsureNames(dbc dbctx.Context, names []string) error
}

// MeshGateway submits image-to-model tasks and returns the raw reply.
type MeshGateway interface {
	CreateTask(ctx context.Context, imageURL string) (string, error)
}

// ImagePublisher turns image bytes into a public URL.
type ImagePublisher interface {
	Publish(ctx context.Context, filename string, data []byte) (string, error)
}

// Metrics is the slice of observability.Metrics the services record into.
type Metrics interface {
	IncTask(outcome string)
	IncRecordWrite(state string)
	IncBestEffortFailure()
}

type nopMetrics struct{}

func (nopMetrics) IncTask(string)        {}
func (nopMetrics) IncRecordWrite(string) {}
func (nopMetrics) IncBestEffortFailure() {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
