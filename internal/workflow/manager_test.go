package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"muraai/internal/heritage"
	"muraai/internal/pipeline"
)

type fakeSource struct {
	mu    sync.Mutex
	queue []*heritage.Item
	err   error
}

func (f *fakeSource) NextForStatuses(ctx context.Context, statuses ...heritage.Status) (*heritage.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.queue) == 0 {
		return nil, nil
	}
	item := f.queue[0]
	f.queue = f.queue[1:]
	return item, nil
}

type fakeProcessor struct {
	mu        sync.Mutex
	processed []string
	fail      bool
}

func (f *fakeProcessor) Process(ctx context.Context, id string) pipeline.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, id)
	if f.fail {
		return pipeline.Outcome{
			ItemID:  id,
			Failure: &pipeline.Failure{Stage: pipeline.StageAnalyze, Err: errors.New("boom")},
		}
	}
	return pipeline.Outcome{ItemID: id, Item: &heritage.Item{ID: id, ProcessingStatus: heritage.StatusCompleted}}
}

func (f *fakeProcessor) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.processed...)
}

func TestProcessNextDrainsQueueInOrder(t *testing.T) {
	source := &fakeSource{queue: []*heritage.Item{{ID: "a"}, {ID: "b"}}}
	processor := &fakeProcessor{}
	manager := NewManager(nil, source, processor, nil)
	ctx := context.Background()

	for _, want := range []bool{true, true, false} {
		processed, err := manager.ProcessNext(ctx)
		if err != nil {
			t.Fatalf("ProcessNext: %v", err)
		}
		if processed != want {
			t.Fatalf("processed = %v, want %v", processed, want)
		}
	}

	ids := processor.ids()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("processed = %v", ids)
	}
}

func TestProcessNextSurfacesSourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("db locked")}
	manager := NewManager(nil, source, &fakeProcessor{}, nil)

	if _, err := manager.ProcessNext(context.Background()); err == nil {
		t.Fatal("expected source error")
	}
}

func TestProcessNextFailedOutcomeIsNotAnError(t *testing.T) {
	source := &fakeSource{queue: []*heritage.Item{{ID: "a"}}}
	processor := &fakeProcessor{fail: true}
	manager := NewManager(nil, source, processor, nil)

	processed, err := manager.ProcessNext(context.Background())
	if err != nil {
		t.Fatalf("ProcessNext: %v", err)
	}
	if !processed {
		t.Fatal("item should count as processed")
	}
}

func TestStartStop(t *testing.T) {
	source := &fakeSource{queue: []*heritage.Item{{ID: "a"}, {ID: "b"}}}
	processor := &fakeProcessor{}
	manager := NewManager(nil, source, processor, nil)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := manager.Start(context.Background()); err == nil {
		t.Error("double start should fail")
	}
	if !manager.Running() {
		t.Error("manager should report running")
	}

	deadline := time.After(2 * time.Second)
	for len(processor.ids()) < 2 {
		select {
		case <-deadline:
			t.Fatalf("timed out, processed = %v", processor.ids())
		case <-time.After(10 * time.Millisecond):
		}
	}

	manager.Stop()
	if manager.Running() {
		t.Error("manager should report stopped")
	}
	manager.Stop()
}
