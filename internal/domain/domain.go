package domain

import (
	"github.com/yungbote/model3d-backend/internal/domain/animal"
	"github.com/yungbote/model3d-backend/internal/domain/model3d"
)

type (
	Animal              = animal.Animal
	GenerationState     = model3d.GenerationState
	GenerationStateName = model3d.GenerationStateName
	GenerationRecord    = model3d.GenerationRecord
	RecordMetadata      = model3d.RecordMetadata
	TaskOutcome         = model3d.TaskOutcome
	OutcomeKind         = model3d.OutcomeKind
)

const (
	StatePending   = model3d.StatePending
	StateGenerated = model3d.StateGenerated
	StateError     = model3d.StateError

	OutcomeSuccess = model3d.OutcomeSuccess
	OutcomeFailure = model3d.OutcomeFailure
)

var (
	Success             = model3d.Success
	Failure             = model3d.Failure
	NewGenerationRecord = model3d.NewGenerationRecord
	AllStates           = model3d.AllStates
	ParseStateName      = model3d.ParseStateName
)
