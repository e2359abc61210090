package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"muraai/internal/heritage"
	"muraai/internal/pipeline"
	"muraai/internal/translatecache"
)

type fakeProcessor struct {
	outcome pipeline.Outcome
	lastID  string
}

func (f *fakeProcessor) Process(ctx context.Context, id string) pipeline.Outcome {
	f.lastID = id
	if f.outcome.ItemID == "" {
		f.outcome.ItemID = id
	}
	return f.outcome
}

type fakeTranslator struct {
	cleared int64
	fail    bool
}

func (f *fakeTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) translatecache.Result {
	if f.fail {
		return translatecache.Result{Text: text, Status: translatecache.StatusFallback}
	}
	return translatecache.Result{Text: "[" + targetLang + "]" + text, Status: translatecache.StatusTranslated}
}

func (f *fakeTranslator) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) []translatecache.Result {
	results := make([]translatecache.Result, len(texts))
	for i, text := range texts {
		results[i] = f.Translate(ctx, text, sourceLang, targetLang)
	}
	return results
}

func (f *fakeTranslator) Clear(ctx context.Context) (int64, error) {
	return f.cleared, nil
}

func newTestServer(t *testing.T, processor Processor) (*httptest.Server, *heritage.Store) {
	t.Helper()
	store, err := heritage.OpenPath(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if processor == nil {
		processor = &fakeProcessor{}
	}
	handler := NewHandler(store, processor, &fakeTranslator{cleared: 3}, nil)
	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)
	return server, store
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestCreateAndGetItem(t *testing.T) {
	server, _ := newTestServer(t, nil)

	resp, created := doJSON(t, http.MethodPost, server.URL+"/api/v1/items", map[string]any{
		"type":  "song",
		"title": "Елім-ай",
		"tags":  []string{"песня"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %v", resp.StatusCode, created)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("missing id in %v", created)
	}
	if created["processing_status"] != "pending" {
		t.Errorf("processing_status = %v", created["processing_status"])
	}

	resp, fetched := doJSON(t, http.MethodGet, server.URL+"/api/v1/items/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	if fetched["title"] != "Елім-ай" {
		t.Errorf("title = %v", fetched["title"])
	}
}

func TestCreateItemValidation(t *testing.T) {
	server, _ := newTestServer(t, nil)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/items", map[string]any{
		"type": "song",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	if body["error"] == "" {
		t.Error("missing error message")
	}
}

func TestGetMissingItem(t *testing.T) {
	server, _ := newTestServer(t, nil)
	resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/v1/items/ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestListItemsByStatus(t *testing.T) {
	server, store := newTestServer(t, nil)
	ctx := context.Background()

	item, _ := store.NewItem(ctx, heritage.Draft{Type: heritage.TypeSong, Title: "one"})
	store.NewItem(ctx, heritage.Draft{Type: heritage.TypeStory, Title: "two"})
	store.UpdateStatus(ctx, item.ID, heritage.StatusFailed, "boom")

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/v1/items/?status=failed", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	items, _ := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %v", body["items"])
	}

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/v1/items/?status=bogus", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bogus status filter = %d", resp.StatusCode)
	}
}

func TestProcessItemSuccess(t *testing.T) {
	processor := &fakeProcessor{}
	server, store := newTestServer(t, processor)
	ctx := context.Background()

	item, _ := store.NewItem(ctx, heritage.Draft{Type: heritage.TypeSong, Title: "x", TextContent: "y"})
	processor.outcome = pipeline.Outcome{
		ItemID: item.ID,
		Item: &heritage.Item{
			ID:               item.ID,
			Type:             heritage.TypeSong,
			Title:            "x",
			ProcessingStatus: heritage.StatusCompleted,
		},
	}

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/items/"+item.ID+"/process", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	if processor.lastID != item.ID {
		t.Errorf("processed id = %q", processor.lastID)
	}
	if body["processing_status"] != "completed" {
		t.Errorf("processing_status = %v", body["processing_status"])
	}
}

func TestProcessItemFailure(t *testing.T) {
	processor := &fakeProcessor{outcome: pipeline.Outcome{
		Failure: &pipeline.Failure{Stage: pipeline.StageContent, Err: context.DeadlineExceeded},
	}}
	server, _ := newTestServer(t, processor)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/items/some-id/process", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["stage"] != "content" {
		t.Errorf("stage = %v", body["stage"])
	}
}

func TestRetryItem(t *testing.T) {
	server, store := newTestServer(t, nil)
	ctx := context.Background()

	item, _ := store.NewItem(ctx, heritage.Draft{Type: heritage.TypeSong, Title: "x"})
	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/items/"+item.ID+"/retry", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("retry pending item status = %d", resp.StatusCode)
	}

	store.UpdateStatus(ctx, item.ID, heritage.StatusFailed, "boom")
	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/items/"+item.ID+"/retry", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	loaded, _ := store.GetByID(ctx, item.ID)
	if loaded.ProcessingStatus != heritage.StatusPending {
		t.Errorf("status = %q", loaded.ProcessingStatus)
	}
}

func TestDeleteItem(t *testing.T) {
	server, store := newTestServer(t, nil)
	item, _ := store.NewItem(context.Background(), heritage.Draft{Type: heritage.TypeSong, Title: "x"})

	resp, _ := doJSON(t, http.MethodDelete, server.URL+"/api/v1/items/"+item.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/api/v1/items/"+item.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d", resp.StatusCode)
	}
}

func TestIncrementViews(t *testing.T) {
	server, store := newTestServer(t, nil)
	ctx := context.Background()
	item, _ := store.NewItem(ctx, heritage.Draft{Type: heritage.TypeSong, Title: "x"})

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/items/"+item.ID+"/views", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	loaded, _ := store.GetByID(ctx, item.ID)
	if loaded.ViewsCount != 1 {
		t.Errorf("views = %d", loaded.ViewsCount)
	}

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/items/ghost/views", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("ghost views status = %d", resp.StatusCode)
	}
}

// wrappingCatalog adds message context to store errors, as a caller
// layered over the store would.
type wrappingCatalog struct {
	Catalog
}

func (c wrappingCatalog) IncrementViews(ctx context.Context, id string) error {
	if err := c.Catalog.IncrementViews(ctx, id); err != nil {
		return fmt.Errorf("increment views for %s: %w", id, err)
	}
	return nil
}

func TestIncrementViewsDetectsWrappedNotFound(t *testing.T) {
	store, err := heritage.OpenPath(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	handler := NewHandler(wrappingCatalog{store}, &fakeProcessor{}, &fakeTranslator{}, nil)
	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/items/ghost/views", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for wrapped not-found", resp.StatusCode)
	}
}

func TestTranslateSingle(t *testing.T) {
	server, _ := newTestServer(t, nil)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/translate", map[string]any{
		"text":        "сәлем",
		"source_lang": "kk",
		"target_lang": "ru",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	if body["text"] != "[ru]сәлем" || body["status"] != "translated" {
		t.Errorf("body = %v", body)
	}
}

func TestTranslateBatch(t *testing.T) {
	server, _ := newTestServer(t, nil)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/translate", map[string]any{
		"texts":       []string{"a", "b"},
		"target_lang": "kk",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	translations, _ := body["translations"].([]any)
	if len(translations) != 2 {
		t.Fatalf("translations = %v", body["translations"])
	}
}

func TestTranslateValidation(t *testing.T) {
	server, _ := newTestServer(t, nil)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/translate", map[string]any{
		"text": "x",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing target status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/translate", map[string]any{
		"target_lang": "ru",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing text status = %d", resp.StatusCode)
	}
}

func TestClearCache(t *testing.T) {
	server, _ := newTestServer(t, nil)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/cache/clear", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["removed"] != float64(3) {
		t.Errorf("removed = %v", body["removed"])
	}
}

func TestHealth(t *testing.T) {
	server, store := newTestServer(t, nil)
	store.NewItem(context.Background(), heritage.Draft{Type: heritage.TypeSong, Title: "x"})

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/v1/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}
