package model3d

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/model3d-backend/internal/domain/animal"
)

// GenerationRecord is the outcome of the latest generation attempt for one
// animal. At most one exists per animal (unique index on animal_id).
type GenerationRecord struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// PhotoOriginalURL holds the provider's rendered preview.
	PhotoOriginalURL *string `gorm:"column:photo_original_url;type:text" json:"photo_original_url,omitempty"`
	MeshURL          *string `gorm:"column:url_modelo;type:text" json:"url_modelo,omitempty"`

	AnimalID uint           `gorm:"column:animal_id;not null;uniqueIndex" json:"animal_id"`
	Animal   *animal.Animal `gorm:"foreignKey:AnimalID;references:ID" json:"animal,omitempty"`

	StateID uint             `gorm:"column:state_id;not null;index" json:"state_id"`
	State   *GenerationState `gorm:"foreignKey:StateID;references:ID" json:"state,omitempty"`

	TaskID   *string        `gorm:"column:task_id;type:text" json:"task_id,omitempty"`
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime;index" json:"updated_at"`
}

func (GenerationRecord) TableName() string { return "generation_records" }

// RecordMetadata is what lands in the metadata column.
type RecordMetadata struct {
	Provider      string         `json:"provider,omitempty"`
	Options       map[string]any `json:"options,omitempty"`
	FailureReason string         `json:"failure_reason,omitempty"`
}

// NewGenerationRecord builds a fresh record for an animal from an outcome.
func NewGenerationRecord(animalID uint, state *GenerationState, outcome TaskOutcome, meta RecordMetadata) GenerationRecord {
	now := time.Now().UTC()
	base := GenerationRecord{
		ID:        uuid.New(),
		AnimalID:  animalID,
		CreatedAt: now,
	}
	return base.WithOutcome(state, outcome, meta, now)
}

// WithOutcome returns a copy carrying the outcome's URLs and state. The id,
// animal and creation time are kept. On failure both URLs are cleared.
func (r GenerationRecord) WithOutcome(state *GenerationState, outcome TaskOutcome, meta RecordMetadata, now time.Time) GenerationRecord {
	out := r
	out.Animal = nil
	out.State = state
	if state != nil {
		out.StateID = state.ID
	}
	if outcome.Succeeded() {
		out.MeshURL = outcome.MeshURL()
		out.PhotoOriginalURL = outcome.PreviewURL()
		id := outcome.TaskID()
		out.TaskID = &id
		meta.FailureReason = ""
	} else {
		out.MeshURL = nil
		out.PhotoOriginalURL = nil
		out.TaskID = nil
		if meta.FailureReason == "" {
			meta.FailureReason = outcome.Reason()
		}
	}
	out.Metadata = encodeMetadata(meta)
	out.UpdatedAt = now
	return out
}

// Meta decodes the metadata column. Unreadable metadata decodes as empty.
func (r GenerationRecord) Meta() RecordMetadata {
	var m RecordMetadata
	if len(r.Metadata) == 0 {
		return m
	}
	_ = json.Unmarshal(r.Metadata, &m)
	return m
}

func encodeMetadata(meta RecordMetadata) datatypes.JSON {
	b, err := json.Marshal(meta)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}
