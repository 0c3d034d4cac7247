package model3d

import "fmt"

// GenerationStateName is the closed set of lifecycle stages a record can be in.
// Only the storage boundary sees the persisted spelling.
type GenerationStateName int

const (
	StatePending GenerationStateName = iota + 1
	StateGenerated
	StateError
)

var stateNames = map[GenerationStateName]string{
	StatePending:   "Pending",
	StateGenerated: "Generated",
	StateError:     "Error",
}

// AllStates lists every state in seeding order.
func AllStates() []GenerationStateName {
	return []GenerationStateName{StatePending, StateGenerated, StateError}
}

// StoredName is the catalog name of the state.
func (s GenerationStateName) StoredName() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return ""
}

func (s GenerationStateName) String() string {
	if n := s.StoredName(); n != "" {
		return n
	}
	return fmt.Sprintf("GenerationStateName(%d)", int(s))
}

// ParseStateName maps a catalog name back onto the enum.
func ParseStateName(stored string) (GenerationStateName, bool) {
	for s, n := range stateNames {
		if n == stored {
			return s, true
		}
	}
	return 0, false
}

// GenerationState is a row of the state catalog. Seeded once, never mutated.
type GenerationState struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;not null;uniqueIndex" json:"name"`
}

func (GenerationState) TableName() string { return "generation_states" }
