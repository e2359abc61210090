package testsupport

import (
	"context"
	"testing"

	"muraai/internal/config"
	"muraai/internal/heritage"
)

// MustOpenStore opens the catalog store for the supplied config, failing
// the test on error and closing the store on cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *heritage.Store {
	t.Helper()
	store, err := heritage.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close catalog store: %v", err)
		}
	})
	return store
}

// SeedItem inserts a pending item with sensible defaults, applying any
// mutations to the draft first.
func SeedItem(t testing.TB, store *heritage.Store, mutate ...func(*heritage.Draft)) *heritage.Item {
	t.Helper()
	draft := heritage.Draft{
		Type:        heritage.TypeSong,
		Title:       "Елім-ай",
		Description: "Историческая песня",
		Region:      "Жетысу",
		Language:    "kk",
		TextContent: "текст песни",
	}
	for _, fn := range mutate {
		fn(&draft)
	}
	item, err := store.NewItem(context.Background(), draft)
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}
