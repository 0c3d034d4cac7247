package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/model3d-backend/internal/domain"
)

func SeedAnimal(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Animal {
	tb.Helper()
	a := &types.Animal{Name: name, Species: "dog"}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed animal: %v", err)
	}
	return a
}

func State(tb testing.TB, ctx context.Context, tx *gorm.DB, name types.GenerationStateName) *types.GenerationState {
	tb.Helper()
	var s types.GenerationState
	if err := tx.WithContext(ctx).Where("name = ?", name.StoredName()).First(&s).Error; err != nil {
		tb.Fatalf("load state %s: %v", name, err)
	}
	return &s
}

func CountRecords(tb testing.TB, ctx context.Context, tx *gorm.DB, animalID uint) int64 {
	tb.Helper()
	var n int64
	if err := tx.WithContext(ctx).Model(&types.GenerationRecord{}).Where("animal_id = ?", animalID).Count(&n).Error; err != nil {
		tb.Fatalf("count records: %v", err)
	}
	return n
}

// EnsureAnimal makes sure an animal with exactly this id exists and has no
// generation record yet.
func EnsureAnimal(tb testing.TB, ctx context.Context, db *gorm.DB, id uint, name string) *types.Animal {
	tb.Helper()
	a := &types.Animal{ID: id, Name: name, Species: "dog"}
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(a).Error; err != nil {
		tb.Fatalf("ensure animal %d: %v", id, err)
	}
	if err := db.WithContext(ctx).Where("animal_id = ?", id).Delete(&types.GenerationRecord{}).Error; err != nil {
		tb.Fatalf("clear records for animal %d: %v", id, err)
	}
	return a
}
