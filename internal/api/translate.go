package api

import (
	"net/http"
	"strings"

	"muraai/internal/translatecache"
)

type translateRequest struct {
	Text       string   `json:"text"`
	Texts      []string `json:"texts"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
}

type translationPayload struct {
	Text   string `json:"text"`
	Status string `json:"status"`
}

func toPayload(result translatecache.Result) translationPayload {
	return translationPayload{Text: result.Text, Status: string(result.Status)}
}

func (h *Handler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.TargetLang) == "" {
		respondError(w, http.StatusBadRequest, "target_lang required")
		return
	}
	if req.Text == "" && len(req.Texts) == 0 {
		respondError(w, http.StatusBadRequest, "text or texts required")
		return
	}

	if len(req.Texts) > 0 {
		results := h.translator.TranslateBatch(r.Context(), req.Texts, req.SourceLang, req.TargetLang)
		payloads := make([]translationPayload, len(results))
		for i, result := range results {
			payloads[i] = toPayload(result)
		}
		respondJSON(w, http.StatusOK, map[string]any{"translations": payloads})
		return
	}

	result := h.translator.Translate(r.Context(), req.Text, req.SourceLang, req.TargetLang)
	respondJSON(w, http.StatusOK, toPayload(result))
}

func (h *Handler) handleClearCache(w http.ResponseWriter, r *http.Request) {
	removed, err := h.translator.Clear(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}
