package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// maxAudioBytes caps how much audio is downloaded for transcription.
const maxAudioBytes = 20 << 20

// Transcribe downloads the referenced audio recording and asks the model
// for a verbatim transcription.
func (c *Client) Transcribe(ctx context.Context, audioURL string) (string, error) {
	audioURL = strings.TrimSpace(audioURL)
	if audioURL == "" {
		return "", errors.New("gemini transcribe: audio url required")
	}

	data, mimeType, err := c.fetchAudio(ctx, audioURL)
	if err != nil {
		return "", err
	}

	parts := []part{
		{Text: transcriptionPrompt},
		{InlineData: &inlineData{
			MIMEType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		}},
	}
	return c.generateText(ctx, parts, false, "gemini transcribe")
}

func (c *Client) fetchAudio(ctx context.Context, audioURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("gemini transcribe: build audio request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("gemini transcribe: fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("gemini transcribe: fetch audio: http %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("gemini transcribe: read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, "", errors.New("gemini transcribe: empty audio payload")
	}
	if len(data) > maxAudioBytes {
		return nil, "", fmt.Errorf("gemini transcribe: audio exceeds %d bytes", maxAudioBytes)
	}

	return data, audioMIMEType(resp.Header.Get("Content-Type"), audioURL), nil
}

// audioMIMEType picks the inline data type from the response header,
// falling back to the URL extension and finally to audio/mpeg.
func audioMIMEType(contentType, audioURL string) string {
	if contentType != "" {
		if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
			if strings.HasPrefix(parsed, "audio/") || strings.HasPrefix(parsed, "video/") {
				return parsed
			}
		}
	}
	if parsed, err := url.Parse(audioURL); err == nil {
		switch strings.ToLower(path.Ext(parsed.Path)) {
		case ".mp3":
			return "audio/mpeg"
		case ".wav":
			return "audio/wav"
		case ".ogg", ".oga":
			return "audio/ogg"
		case ".m4a", ".aac":
			return "audio/aac"
		case ".flac":
			return "audio/flac"
		}
	}
	return "audio/mpeg"
}
