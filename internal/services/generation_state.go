package services

import (
	"context"
	"fmt"

	types "github.com/yungbote/model3d-backend/internal/domain"
	"github.com/yungbote/model3d-backend/internal/platform/apierr"
	"github.com/yungbote/model3d-backend/internal/platform/dbctx"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

// GenerationStateService is the only place the state enum meets the
// persisted catalog.
type GenerationStateService interface {
	Seed(ctx context.Context) error
	Resolve(dbc dbctx.Context, name types.GenerationStateName) (*types.GenerationState, error)
}

type generationStateService struct {
	log     *logger.Logger
	catalog StateCatalog
}

func NewGenerationStateService(log *logger.Logger, catalog StateCatalog) GenerationStateService {
	return &generationStateService{
		log:     log.With("service", "GenerationStateService"),
		catalog: catalog,
	}
}

func (s *generationStateService) Seed(ctx context.Context) error {
	names := make([]string, 0, len(types.AllStates()))
	for _, st := range types.AllStates() {
		names = append(names, st.StoredName())
	}
	if err := s.catalog.EnsureNames(dbctx.Context{Ctx: ctx}, names); err != nil {
		return fmt.Errorf("seed generation states: %w", err)
	}
	s.log.Info("Generation states seeded", "states", names)
	return nil
}

// Resolve fails with a configuration error when the catalog lacks the state.
func (s *generationStateService) Resolve(dbc dbctx.Context, name types.GenerationStateName) (*types.GenerationState, error) {
	stored := name.StoredName()
	if stored == "" {
		return nil, apierr.Newf(apierr.KindInternal, "generation_state_unknown", "unknown generation state %v", name)
	}
	st, err := s.catalog.GetByName(dbc, stored)
	if err != nil {
		return nil, fmt.Errorf("lookup generation state %q: %w", stored, err)
	}
	if st == nil {
		return nil, apierr.Newf(apierr.KindConfiguration, "generation_state_missing",
			"generation state %q is not seeded", stored)
	}
	return st, nil
}
