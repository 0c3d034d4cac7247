package model3d

import (
	"testing"
	"time"
)

func TestStateNamesRoundTrip(t *testing.T) {
	for _, s := range AllStates() {
		got, ok := ParseStateName(s.StoredName())
		if !ok || got != s {
			t.Fatalf("ParseStateName(%q): want=%v got=%v ok=%v", s.StoredName(), s, got, ok)
		}
	}
	if _, ok := ParseStateName("Done"); ok {
		t.Fatalf("ParseStateName(Done): want not ok")
	}
	if got := StateError.StoredName(); got != "Error" {
		t.Fatalf("StoredName: want=Error got=%q", got)
	}
}

func TestOutcomeTargetState(t *testing.T) {
	if got := Success("abc123", "", "").TargetState(); got != StateGenerated {
		t.Fatalf("success: want=%v got=%v", StateGenerated, got)
	}
	if got := Failure("nope").TargetState(); got != StateError {
		t.Fatalf("failure: want=%v got=%v", StateError, got)
	}
	if Success("abc123", "", "").MeshURL() != nil {
		t.Fatalf("empty mesh url should be absent")
	}
}

func TestNewGenerationRecordFromSuccess(t *testing.T) {
	state := &GenerationState{ID: 2, Name: "Generated"}
	rec := NewGenerationRecord(42, state, Success("abc123", "https://cdn/mesh.glb", "https://cdn/preview.png"), RecordMetadata{Provider: "tripo"})

	if rec.AnimalID != 42 || rec.StateID != 2 {
		t.Fatalf("ids: animal=%d state=%d", rec.AnimalID, rec.StateID)
	}
	if rec.MeshURL == nil || *rec.MeshURL != "https://cdn/mesh.glb" {
		t.Fatalf("mesh url: got=%v", rec.MeshURL)
	}
	if rec.PhotoOriginalURL == nil || *rec.PhotoOriginalURL != "https://cdn/preview.png" {
		t.Fatalf("photo url: got=%v", rec.PhotoOriginalURL)
	}
	if rec.TaskID == nil || *rec.TaskID != "abc123" {
		t.Fatalf("task id: got=%v", rec.TaskID)
	}
	if got := rec.Meta().Provider; got != "tripo" {
		t.Fatalf("meta provider: want=tripo got=%q", got)
	}
}

func TestWithOutcomeFailureClearsURLsAndKeepsIdentity(t *testing.T) {
	generated := &GenerationState{ID: 2, Name: "Generated"}
	errState := &GenerationState{ID: 3, Name: "Error"}
	first := NewGenerationRecord(7, generated, Success("t1", "https://m", "https://p"), RecordMetadata{})

	later := first.CreatedAt.Add(time.Minute)
	second := first.WithOutcome(errState, Failure("no task identifier in reply"), RecordMetadata{}, later)

	if second.ID != first.ID || second.AnimalID != first.AnimalID || !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("identity changed: first=%+v second=%+v", first, second)
	}
	if second.MeshURL != nil || second.PhotoOriginalURL != nil || second.TaskID != nil {
		t.Fatalf("failure should clear urls: %+v", second)
	}
	if second.StateID != 3 || !second.UpdatedAt.Equal(later) {
		t.Fatalf("state/updated: state=%d updated=%v", second.StateID, second.UpdatedAt)
	}
	if got := second.Meta().FailureReason; got != "no task identifier in reply" {
		t.Fatalf("failure reason: got=%q", got)
	}
	if first.MeshURL == nil {
		t.Fatalf("original record mutated")
	}
}
