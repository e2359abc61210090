// Package api exposes the catalog over HTTP: item CRUD, processing
// triggers, translation and cache administration.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"muraai/internal/heritage"
	"muraai/internal/logging"
	"muraai/internal/pipeline"
	"muraai/internal/translatecache"
)

// Catalog is the item storage surface the API needs.
type Catalog interface {
	NewItem(ctx context.Context, draft heritage.Draft) (*heritage.Item, error)
	GetByID(ctx context.Context, id string) (*heritage.Item, error)
	List(ctx context.Context, statuses ...heritage.Status) ([]*heritage.Item, error)
	Remove(ctx context.Context, id string) (bool, error)
	RetryFailed(ctx context.Context, ids ...string) (int64, error)
	IncrementViews(ctx context.Context, id string) error
	Health(ctx context.Context) (heritage.HealthSummary, error)
}

// Processor runs the pipeline for one item.
type Processor interface {
	Process(ctx context.Context, id string) pipeline.Outcome
}

// Translator serves translations through the cache layer.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) translatecache.Result
	TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) []translatecache.Result
	Clear(ctx context.Context) (int64, error)
}

// Handler serves the HTTP API.
type Handler struct {
	catalog    Catalog
	processor  Processor
	translator Translator
	logger     *slog.Logger
}

// NewHandler wires the API over its collaborators.
func NewHandler(catalog Catalog, processor Processor, translator Translator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		catalog:    catalog,
		processor:  processor,
		translator: translator,
		logger:     logger.With(logging.String(logging.FieldComponent, "api")),
	}
}

// Router builds the chi route tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.handleHealth)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.handleListItems)
			r.Post("/", h.handleCreateItem)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetItem)
				r.Delete("/", h.handleDeleteItem)
				r.Post("/process", h.handleProcessItem)
				r.Post("/retry", h.handleRetryItem)
				r.Post("/views", h.handleIncrementViews)
			})
		})

		r.Post("/translate", h.handleTranslate)
		r.Post("/cache/clear", h.handleClearCache)
	})
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)
		h.logger.Info("request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", wrapped.Status()),
			logging.Duration("duration", time.Since(start)),
			logging.String(logging.FieldRequestID, middleware.GetReqID(r.Context())))
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}
