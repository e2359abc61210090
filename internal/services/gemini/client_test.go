package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"muraai/internal/heritage"
)

func candidateResponse(text string) string {
	payload := map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(
		Config{APIKey: "test-key", BaseURL: server.URL, Model: "gemini-test"},
		WithHTTPClient(server.Client()),
		WithRetryBackoff(time.Millisecond, 5*time.Millisecond),
		WithSleeper(func(time.Duration) {}),
	)
	return client, server
}

func TestAnalyzeParsesStructuredResult(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateContentRequest

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		analysis := `{"summary":"Историческая песня","tags_ru":["песня","история"],"tags_kz":["ән"]}`
		fmt.Fprint(w, candidateResponse(analysis))
	})

	result, err := client.Analyze(context.Background(), heritage.TypeSong, "Елім-ай, текст песни")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Summary != "Историческая песня" {
		t.Errorf("summary = %q", result.Summary)
	}
	if len(result.TagsRU) != 2 || len(result.TagsKZ) != 1 {
		t.Errorf("tags = %v / %v", result.TagsRU, result.TagsKZ)
	}

	if gotPath != "/models/gemini-test:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q", gotKey)
	}
	if gotBody.GenerationConfig == nil || gotBody.GenerationConfig.ResponseMIMEType != "application/json" {
		t.Errorf("generationConfig = %+v", gotBody.GenerationConfig)
	}
	if gotBody.GenerationConfig.Temperature != 0 {
		t.Errorf("temperature = %v", gotBody.GenerationConfig.Temperature)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 {
		t.Fatalf("contents = %+v", gotBody.Contents)
	}
	prompt := gotBody.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, "song") || !strings.Contains(prompt, "Елім-ай") {
		t.Errorf("prompt missing item type or content: %q", prompt)
	}
}

func TestAnalyzeStripsCodeFences(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fenced := "```json\n{\"summary\":\"обряд\"}\n```"
		fmt.Fprint(w, candidateResponse(fenced))
	})

	result, err := client.Analyze(context.Background(), heritage.TypeRitual, "описание обряда")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Summary != "обряд" {
		t.Errorf("summary = %q", result.Summary)
	}
}

func TestAnalyzeRejectsMissingSummary(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateResponse(`{"tags_ru":["x"]}`))
	})

	if _, err := client.Analyze(context.Background(), heritage.TypeStory, "текст"); err == nil {
		t.Fatal("expected validation error for empty summary")
	}
}

func TestAnalyzeRequiresContent(t *testing.T) {
	client := NewClient(Config{APIKey: "k", Model: "m"})
	if _, err := client.Analyze(context.Background(), heritage.TypeSong, "   "); err == nil {
		t.Fatal("expected error for blank content")
	}
}

func TestGenerateRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, candidateResponse(`{"summary":"ok"}`))
	})

	result, err := client.Analyze(context.Background(), heritage.TypeSong, "текст")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Summary != "ok" {
		t.Errorf("summary = %q", result.Summary)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestGenerateDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusBadRequest)
	})

	if _, err := client.Analyze(context.Background(), heritage.TypeSong, "текст"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestTranscribeSendsInlineAudio(t *testing.T) {
	audio := []byte{0x49, 0x44, 0x33, 0x04, 0x00}
	audioServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	}))
	defer audioServer.Close()

	var gotBody generateContentRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, candidateResponse("Әй, дүние-ай"))
	})

	text, err := client.Transcribe(context.Background(), audioServer.URL+"/recording.mp3")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "Әй, дүние-ай" {
		t.Errorf("transcription = %q", text)
	}

	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 2 {
		t.Fatalf("parts = %+v", gotBody.Contents)
	}
	inline := gotBody.Contents[0].Parts[1].InlineData
	if inline == nil {
		t.Fatal("missing inline data part")
	}
	if inline.MIMEType != "audio/mpeg" {
		t.Errorf("mime = %q", inline.MIMEType)
	}
	decoded, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		t.Fatalf("decode inline data: %v", err)
	}
	if string(decoded) != string(audio) {
		t.Error("inline audio bytes do not round-trip")
	}
	if gotBody.GenerationConfig != nil && gotBody.GenerationConfig.ResponseMIMEType != "" {
		t.Error("transcription should not force a JSON response")
	}
}

func TestTranscribeRejectsFailedAudioFetch(t *testing.T) {
	audioServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer audioServer.Close()

	client := NewClient(Config{APIKey: "k", Model: "m"})
	if _, err := client.Transcribe(context.Background(), audioServer.URL+"/missing.mp3"); err == nil {
		t.Fatal("expected error for missing audio")
	}
}

func TestAudioMIMEType(t *testing.T) {
	tests := []struct {
		contentType string
		url         string
		want        string
	}{
		{"audio/wav", "https://x/y.mp3", "audio/wav"},
		{"text/html; charset=utf-8", "https://x/y.ogg", "audio/ogg"},
		{"", "https://x/song.flac", "audio/flac"},
		{"", "https://x/data.bin", "audio/mpeg"},
	}
	for _, tc := range tests {
		if got := audioMIMEType(tc.contentType, tc.url); got != tc.want {
			t.Errorf("audioMIMEType(%q, %q) = %q, want %q", tc.contentType, tc.url, got, tc.want)
		}
	}
}

func TestDecodeModelJSON(t *testing.T) {
	var target struct {
		Summary string `json:"summary"`
	}
	cases := []string{
		`{"summary":"plain"}`,
		"```json\n{\"summary\":\"plain\"}\n```",
		"Вот результат: {\"summary\":\"plain\"} конец",
	}
	for _, payload := range cases {
		target.Summary = ""
		if err := DecodeModelJSON(payload, &target); err != nil {
			t.Errorf("DecodeModelJSON(%q): %v", payload, err)
			continue
		}
		if target.Summary != "plain" {
			t.Errorf("DecodeModelJSON(%q) summary = %q", payload, target.Summary)
		}
	}

	if err := DecodeModelJSON("", &target); err == nil {
		t.Error("empty payload should error")
	}
	if err := DecodeModelJSON("not json at all", &target); err == nil {
		t.Error("garbage payload should error")
	}
}
