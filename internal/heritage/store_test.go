package heritage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewItemDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.NewItem(ctx, Draft{
		Type:        TypeSong,
		Title:       "Елім-ай",
		Description: "Историческая песня",
		Region:      "Жетысу",
		Language:    "kk",
		Tags:        []string{"песня"},
		AudioURL:    "https://example.com/a.mp3",
	})
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	if item.ID == "" {
		t.Fatal("expected generated identifier")
	}
	if item.ProcessingStatus != StatusPending {
		t.Errorf("status = %q, want pending", item.ProcessingStatus)
	}
	if item.ViewsCount != 0 {
		t.Errorf("views = %d, want 0", item.ViewsCount)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}
	if len(item.Tags) != 1 || item.Tags[0] != "песня" {
		t.Errorf("tags = %v", item.Tags)
	}
}

func TestNewItemRejectsInvalidDraft(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.NewItem(ctx, Draft{Type: TypeSong}); err == nil {
		t.Error("expected error for missing title")
	}
	if _, err := store.NewItem(ctx, Draft{Type: "poem", Title: "x"}); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)
	item, err := store.GetByID(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil item, got %+v", item)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.NewItem(ctx, Draft{Type: TypeStory, Title: "Алдар Көсе"})
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}

	item.ProcessingStatus = StatusCompleted
	item.Transcription = "текст"
	item.Tags = []string{"фольклор", "юмор"}
	if err := item.SetAnalysis(&AnalysisResult{Summary: "сказка"}); err != nil {
		t.Fatalf("SetAnalysis: %v", err)
	}
	before := item.UpdatedAt
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !item.UpdatedAt.After(before) && item.UpdatedAt.Equal(before) {
		t.Error("Update should refresh updated_at")
	}

	loaded, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if loaded.ProcessingStatus != StatusCompleted {
		t.Errorf("status = %q", loaded.ProcessingStatus)
	}
	if loaded.Transcription != "текст" {
		t.Errorf("transcription = %q", loaded.Transcription)
	}
	analysis, err := loaded.Analysis()
	if err != nil {
		t.Fatalf("Analysis: %v", err)
	}
	if analysis == nil || analysis.Summary != "сказка" {
		t.Errorf("analysis = %+v", analysis)
	}
	if len(loaded.Tags) != 2 {
		t.Errorf("tags = %v", loaded.Tags)
	}
}

func TestUpdateMissingItem(t *testing.T) {
	store := newTestStore(t)
	err := store.Update(context.Background(), &Item{ID: "ghost", Type: TypeSong, Title: "x", ProcessingStatus: StatusPending})
	if err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateStatusAndHealth(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, _ := store.NewItem(ctx, Draft{Type: TypeSong, Title: "one"})
	second, _ := store.NewItem(ctx, Draft{Type: TypeSong, Title: "two"})

	if err := store.UpdateStatus(ctx, first.ID, StatusProcessing, ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := store.UpdateStatus(ctx, second.ID, StatusFailed, "boom"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	loaded, _ := store.GetByID(ctx, second.ID)
	if loaded.ErrorMessage != "boom" {
		t.Errorf("error message = %q", loaded.ErrorMessage)
	}

	summary, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if summary.Total != 2 || summary.Processing != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestNextForStatusesReturnsOldest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, _ := store.NewItem(ctx, Draft{Type: TypeCraft, Title: "first"})
	if _, err := store.NewItem(ctx, Draft{Type: TypeCraft, Title: "second"}); err != nil {
		t.Fatalf("NewItem: %v", err)
	}

	next, err := store.NextForStatuses(ctx, StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("next = %+v, want oldest item", next)
	}

	none, err := store.NextForStatuses(ctx, StatusCompleted)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if none != nil {
		t.Fatal("expected no completed items")
	}
}

func TestRetryFailed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, _ := store.NewItem(ctx, Draft{Type: TypeRitual, Title: "rite"})
	if err := store.UpdateStatus(ctx, item.ID, StatusFailed, "nope"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	count, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d", count)
	}

	loaded, _ := store.GetByID(ctx, item.ID)
	if loaded.ProcessingStatus != StatusPending {
		t.Errorf("status = %q, want pending", loaded.ProcessingStatus)
	}
	if loaded.ErrorMessage != "" {
		t.Errorf("error message should be cleared, got %q", loaded.ErrorMessage)
	}
}

func TestIncrementViews(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, _ := store.NewItem(ctx, Draft{Type: TypeSong, Title: "views"})
	for i := 0; i < 3; i++ {
		if err := store.IncrementViews(ctx, item.ID); err != nil {
			t.Fatalf("IncrementViews: %v", err)
		}
	}
	loaded, _ := store.GetByID(ctx, item.ID)
	if loaded.ViewsCount != 3 {
		t.Errorf("views = %d, want 3", loaded.ViewsCount)
	}

	if err := store.IncrementViews(ctx, "ghost"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, _ := store.NewItem(ctx, Draft{Type: TypeSong, Title: "gone"})
	removed, err := store.Remove(ctx, item.ID)
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	removed, err = store.Remove(ctx, item.ID)
	if err != nil || removed {
		t.Fatalf("second Remove = %v, %v", removed, err)
	}

	store.NewItem(ctx, Draft{Type: TypeSong, Title: "a"})
	store.NewItem(ctx, Draft{Type: TypeSong, Title: "b"})
	count, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if count != 2 {
		t.Errorf("cleared %d items, want 2", count)
	}
}
