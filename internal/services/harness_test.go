package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/model3d-backend/internal/data/repos"
	"github.com/yungbote/model3d-backend/internal/data/repos/testutil"
	"github.com/yungbote/model3d-backend/internal/platform/keylock"
)

type fakeMesh struct {
	mu      sync.Mutex
	calls   int
	replies []string
	reply   string
	err     error
}

func (f *fakeMesh) CreateTask(ctx context.Context, imageURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) > 0 {
		r := f.replies[0]
		f.replies = f.replies[1:]
		return r, nil
	}
	return f.reply, nil
}

func (f *fakeMesh) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeImages struct {
	calls int32
	url   string
	err   error
}

func (f *fakeImages) Publish(ctx context.Context, filename string, data []byte) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.url, f.err
}

type countingMetrics struct {
	mu         sync.Mutex
	tasks      map[string]int
	writes     map[string]int
	bestEffort int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{tasks: map[string]int{}, writes: map[string]int{}}
}

func (m *countingMetrics) IncTask(outcome string) {
	m.mu.Lock()
	m.tasks[outcome]++
	m.mu.Unlock()
}

func (m *countingMetrics) IncRecordWrite(state string) {
	m.mu.Lock()
	m.writes[state]++
	m.mu.Unlock()
}

func (m *countingMetrics) IncBestEffortFailure() {
	m.mu.Lock()
	m.bestEffort++
	m.mu.Unlock()
}

type harness struct {
	db         *gorm.DB
	svc        Model3DService
	records    GenerationRecordService
	recordRepo repos.GenerationRecordRepo
	mesh       *fakeMesh
	images     *fakeImages
	metrics    *countingMetrics
}

func newHarness(t *testing.T, locker keylock.Locker) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	states := NewGenerationStateService(log, repos.NewGenerationStateRepo(db, log))
	recordRepo := repos.NewGenerationRecordRepo(db, log)
	metrics := newCountingMetrics()
	records := NewGenerationRecordService(db, log, states, recordRepo, locker, metrics)
	mesh := &fakeMesh{}
	images := &fakeImages{url: "https://i.ibb.co/x/dog.png"}

	svc := NewModel3DService(log, repos.NewAnimalRepo(db, log), records, recordRepo, mesh, images,
		ProviderInfo{Name: "tripo", Options: map[string]any{"style": "object:clay"}}, metrics)

	return &harness{
		db:         db,
		svc:        svc,
		records:    records,
		recordRepo: recordRepo,
		mesh:       mesh,
		images:     images,
		metrics:    metrics,
	}
}

func uintPtr(v uint) *uint { return &v }
