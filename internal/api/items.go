package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"muraai/internal/heritage"
)

type createItemRequest struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Region      string   `json:"region"`
	Language    string   `json:"language"`
	Tags        []string `json:"tags"`
	AudioURL    string   `json:"audio_url"`
	TextContent string   `json:"text_content"`
}

type itemResponse struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Region           string   `json:"region,omitempty"`
	Language         string   `json:"language,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	AudioURL         string   `json:"audio_url,omitempty"`
	TextContent      string   `json:"text_content,omitempty"`
	Transcription    string   `json:"transcription,omitempty"`
	AIAnalysis       any      `json:"ai_analysis,omitempty"`
	ProcessingStatus string   `json:"processing_status"`
	ErrorMessage     string   `json:"error_message,omitempty"`
	ViewsCount       int64    `json:"views_count"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

func itemToResponse(item *heritage.Item) itemResponse {
	resp := itemResponse{
		ID:               item.ID,
		Type:             string(item.Type),
		Title:            item.Title,
		Description:      item.Description,
		Region:           item.Region,
		Language:         item.Language,
		Tags:             item.Tags,
		AudioURL:         item.AudioURL,
		TextContent:      item.TextContent,
		Transcription:    item.Transcription,
		ProcessingStatus: string(item.ProcessingStatus),
		ErrorMessage:     item.ErrorMessage,
		ViewsCount:       item.ViewsCount,
		CreatedAt:        item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        item.UpdatedAt.Format(time.RFC3339),
	}
	if analysis, err := item.Analysis(); err == nil && analysis != nil {
		resp.AIAnalysis = analysis
	}
	return resp
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	summary, err := h.catalog.Health(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"items":  summary,
	})
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	var statuses []heritage.Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		for _, value := range strings.Split(raw, ",") {
			status, ok := heritage.ParseStatus(value)
			if !ok {
				respondError(w, http.StatusBadRequest, "unknown status "+value)
				return
			}
			statuses = append(statuses, status)
		}
	}

	items, err := h.catalog.List(r.Context(), statuses...)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	responses := make([]itemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, itemToResponse(item))
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": responses})
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	item, err := h.catalog.NewItem(r.Context(), heritage.Draft{
		Type:        heritage.ItemType(strings.TrimSpace(req.Type)),
		Title:       req.Title,
		Description: req.Description,
		Region:      req.Region,
		Language:    req.Language,
		Tags:        req.Tags,
		AudioURL:    req.AudioURL,
		TextContent: req.TextContent,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, itemToResponse(item))
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	respondJSON(w, http.StatusOK, itemToResponse(item))
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	removed, err := h.catalog.Remove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

func (h *Handler) handleProcessItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	outcome := h.processor.Process(r.Context(), id)
	if !outcome.Succeeded() {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"id":    id,
			"stage": string(outcome.Failure.Stage),
			"error": outcome.Failure.Err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, itemToResponse(outcome.Item))
}

func (h *Handler) handleRetryItem(w http.ResponseWriter, r *http.Request) {
	count, err := h.catalog.RetryFailed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if count == 0 {
		respondError(w, http.StatusConflict, "item is not in failed status")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"retried": count})
}

func (h *Handler) handleIncrementViews(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.IncrementViews(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, heritage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"counted": true})
}
