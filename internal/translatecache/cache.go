// Package translatecache layers an in-memory map over a persistent
// key/value store to memoize remote translations. Lookups fail open: when
// the remote service is unreachable the caller gets the original text
// back, marked as a fallback, and nothing is cached.
package translatecache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"muraai/internal/language"
	"muraai/internal/logging"
	"muraai/internal/services"
)

// keyPrefix namespaces translation entries inside the shared key/value
// store.
const keyPrefix = "translation:"

// Status describes how a translation result was produced.
type Status string

const (
	// StatusSource means the input was returned untouched (blank text or
	// source language already matching the target).
	StatusSource Status = "source"
	// StatusCached means the translation came from a cache tier.
	StatusCached Status = "cached"
	// StatusTranslated means the remote service produced a fresh
	// translation.
	StatusTranslated Status = "translated"
	// StatusFallback means translation failed and the original text was
	// returned instead.
	StatusFallback Status = "fallback"
)

// Result pairs translated text with how it was obtained.
type Result struct {
	Text   string
	Status Status
}

// Remote is the translation backend. TranslateBatch must return one
// translation per input text, in the same order.
type Remote interface {
	TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error)
}

// Persistent is the durable cache tier.
type Persistent interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	ScanPrefix(ctx context.Context, prefix string) (map[string]string, error)
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// Cache is the two-tier read-through translation cache.
type Cache struct {
	remote     Remote
	persistent Persistent
	logger     *slog.Logger

	mu     sync.RWMutex
	memory map[string]string
}

// New builds a cache over the supplied tiers and warms the memory tier
// from the persistent store. A nil persistent tier leaves the cache
// memory-only.
func New(ctx context.Context, remote Remote, persistent Persistent, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	cache := &Cache{
		remote:     remote,
		persistent: persistent,
		logger:     logger.With(logging.String(logging.FieldComponent, "translatecache")),
		memory:     make(map[string]string),
	}
	cache.warmUp(ctx)
	return cache
}

func (c *Cache) warmUp(ctx context.Context) {
	if c.persistent == nil {
		return
	}
	entries, err := c.persistent.ScanPrefix(ctx, keyPrefix)
	if err != nil {
		c.logger.Warn("translation cache warm-up failed", logging.Error(err))
		return
	}
	c.mu.Lock()
	for key, value := range entries {
		c.memory[key] = value
	}
	c.mu.Unlock()
	if len(entries) > 0 {
		c.logger.Info("translation cache warmed", logging.Int("entries", len(entries)))
	}
}

// cacheKey builds the lookup key for one translation. An unspecified
// source collapses to "auto" so detected translations are shared.
func cacheKey(sourceLang, targetLang, text string) string {
	return keyPrefix + sourceLang + ":" + targetLang + ":" + text
}

// Translate returns text in the target language, consulting the cache
// tiers before the remote service. It never fails: on any error the
// original text comes back with StatusFallback.
func (c *Cache) Translate(ctx context.Context, text, sourceLang, targetLang string) Result {
	results := c.TranslateBatch(ctx, []string{text}, sourceLang, targetLang)
	return results[0]
}

// TranslateBatch translates texts preserving their order, issuing at most
// one remote call for all cache misses combined.
func (c *Cache) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) []Result {
	results := make([]Result, len(texts))
	if len(texts) == 0 {
		return results
	}

	source, target, err := c.normalizePair(sourceLang, targetLang)
	if err != nil {
		c.logger.Warn("translation language rejected",
			logging.String(logging.FieldLang, sourceLang+"->"+targetLang),
			logging.Error(err))
		for i, text := range texts {
			results[i] = Result{Text: text, Status: StatusFallback}
		}
		return results
	}

	// Indexes of texts that still need the remote service.
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		if strings.TrimSpace(text) == "" || (source != language.Auto && source == target) {
			results[i] = Result{Text: text, Status: StatusSource}
			continue
		}
		if cached, ok := c.lookup(ctx, cacheKey(source, target, text)); ok {
			results[i] = Result{Text: cached, Status: StatusCached}
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missIdx) == 0 {
		return results
	}

	translated, err := c.remoteTranslate(ctx, missTexts, source, target)
	if err != nil {
		c.logger.Warn("remote translation failed",
			logging.String(logging.FieldLang, source+"->"+target),
			logging.Int("texts", len(missTexts)),
			logging.Error(err))
		for _, i := range missIdx {
			results[i] = Result{Text: texts[i], Status: StatusFallback}
		}
		return results
	}

	for pos, i := range missIdx {
		results[i] = Result{Text: translated[pos], Status: StatusTranslated}
		c.store(ctx, cacheKey(source, target, texts[i]), translated[pos])
	}
	return results
}

func (c *Cache) normalizePair(sourceLang, targetLang string) (string, string, error) {
	source, err := language.Normalize(sourceLang)
	if err != nil {
		return "", "", err
	}
	target, err := language.NormalizeTarget(targetLang)
	if err != nil {
		return "", "", err
	}
	return source, target, nil
}

func (c *Cache) remoteTranslate(ctx context.Context, texts []string, source, target string) ([]string, error) {
	if c.remote == nil {
		return nil, fmt.Errorf("no remote translator configured")
	}
	remoteSource := source
	if remoteSource == language.Auto {
		remoteSource = ""
	}
	translated, err := c.remote.TranslateBatch(ctx, texts, remoteSource, target)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteTranslation, "translate", "remote batch", "", err)
	}
	if len(translated) != len(texts) {
		return nil, fmt.Errorf("%w: remote returned %d translations for %d texts", services.ErrRemoteTranslation, len(translated), len(texts))
	}
	return translated, nil
}

// lookup checks memory first, then the persistent tier, promoting
// persistent hits into memory.
func (c *Cache) lookup(ctx context.Context, key string) (string, bool) {
	c.mu.RLock()
	value, ok := c.memory[key]
	c.mu.RUnlock()
	if ok {
		return value, true
	}

	if c.persistent == nil {
		return "", false
	}
	value, found, err := c.persistent.Get(ctx, key)
	if err != nil {
		c.logger.Warn("persistent cache read failed", logging.Error(err))
		return "", false
	}
	if !found {
		return "", false
	}
	c.mu.Lock()
	c.memory[key] = value
	c.mu.Unlock()
	return value, true
}

// store writes a fresh translation into both tiers. Persistent write
// failures are logged and swallowed so a broken disk cache never blocks
// translations.
func (c *Cache) store(ctx context.Context, key, value string) {
	c.mu.Lock()
	c.memory[key] = value
	c.mu.Unlock()

	if c.persistent == nil {
		return
	}
	if err := c.persistent.Put(ctx, key, value); err != nil {
		c.logger.Warn("persistent cache write failed", logging.Error(err))
	}
}

// Clear empties both cache tiers and reports how many persistent entries
// were removed.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	c.mu.Lock()
	c.memory = make(map[string]string)
	c.mu.Unlock()

	if c.persistent == nil {
		return 0, nil
	}
	removed, err := c.persistent.DeletePrefix(ctx, keyPrefix)
	if err != nil {
		return 0, fmt.Errorf("clear persistent cache: %w", err)
	}
	c.logger.Info("translation cache cleared", logging.Int64("removed", removed))
	return removed, nil
}

// Size returns the number of entries in the memory tier.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}
