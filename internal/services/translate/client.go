// Package translate wraps the Google Cloud Translation v2 API used by the
// translation cache layer.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultHTTPTimeout = 15 * time.Second

// Config captures the runtime settings required to call the translation
// API.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Client issues translation and language detection requests.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a translation client using the supplied
// configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://translation.googleapis.com/language/translate/v2"
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

type translateRequest struct {
	Query  []string `json:"q"`
	Target string   `json:"target"`
	Source string   `json:"source,omitempty"`
	Format string   `json:"format"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText         string `json:"translatedText"`
			DetectedSourceLanguage string `json:"detectedSourceLanguage"`
		} `json:"translations"`
	} `json:"data"`
	Error *apiError `json:"error"`
}

type detectResponse struct {
	Data struct {
		Detections [][]struct {
			Language   string  `json:"language"`
			Confidence float64 `json:"confidence"`
		} `json:"detections"`
	} `json:"data"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Translate translates a single text into the target language. An empty
// source asks the service to detect the language.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	results, err := c.TranslateBatch(ctx, []string{text}, sourceLang, targetLang)
	if err != nil {
		return "", err
	}
	if len(results) != 1 {
		return "", fmt.Errorf("translate: expected 1 translation, got %d", len(results))
	}
	return results[0], nil
}

// TranslateBatch translates texts in order. The response always holds one
// translation per input text, in the same positions.
func (c *Client) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	targetLang = strings.TrimSpace(targetLang)
	if targetLang == "" {
		return nil, errors.New("translate: target language required")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("translate: api key required")
	}

	payload := translateRequest{
		Query:  texts,
		Target: targetLang,
		Format: "text",
	}
	if source := strings.TrimSpace(sourceLang); source != "" && source != "auto" {
		payload.Source = source
	}

	var response translateResponse
	if err := c.postJSON(ctx, c.cfg.BaseURL, payload, &response); err != nil {
		return nil, err
	}
	if response.Error != nil {
		return nil, fmt.Errorf("translate: api error %d: %s", response.Error.Code, strings.TrimSpace(response.Error.Message))
	}
	if len(response.Data.Translations) != len(texts) {
		return nil, fmt.Errorf("translate: expected %d translations, got %d", len(texts), len(response.Data.Translations))
	}

	results := make([]string, len(texts))
	for i, translation := range response.Data.Translations {
		results[i] = translation.TranslatedText
	}
	return results, nil
}

// Detect returns the detected language code for text.
func (c *Client) Detect(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("translate detect: text required")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", errors.New("translate detect: api key required")
	}

	payload := map[string]any{"q": text}
	var response detectResponse
	if err := c.postJSON(ctx, c.cfg.BaseURL+"/detect", payload, &response); err != nil {
		return "", err
	}
	if response.Error != nil {
		return "", fmt.Errorf("translate detect: api error %d: %s", response.Error.Code, strings.TrimSpace(response.Error.Message))
	}
	for _, group := range response.Data.Detections {
		for _, detection := range group {
			if lang := strings.TrimSpace(detection.Language); lang != "" {
				return lang, nil
			}
		}
	}
	return "", errors.New("translate detect: no detections in response")
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload, target any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("translate request: encode body: %w", err)
	}
	requestURL := endpoint + "?key=" + url.QueryEscape(c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("translate request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("translate request: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("translate request: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("translate request: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("translate request: decode response: %w", err)
	}
	return nil
}
