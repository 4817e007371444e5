package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// TranscribeConfig holds API settings for speech-to-text (OpenAI-compatible).
type TranscribeConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Transcribe sends the audio payload to the /audio/transcriptions endpoint
// and returns the recognized text. The filename carries the container format
// for the provider (for example recording.mp3).
func (c *OpenAICompatibleClient) Transcribe(ctx context.Context, cfg TranscribeConfig, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("transcription input is empty")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("model", cfg.Model); err != nil {
		return "", fmt.Errorf("write transcription model field failed: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create transcription form file failed: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("write transcription payload failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close transcription form failed: %w", err)
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("build transcription request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	client := c.httpClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read transcription response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("transcription response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse transcription json failed: %w", err)
	}
	return strings.TrimSpace(parsed.Text), nil
}

// TranscriptionProvider binds an OpenAI-compatible client to one
// speech-to-text model.
type TranscriptionProvider struct {
	client *OpenAICompatibleClient
	cfg    TranscribeConfig
}

func NewTranscriptionProvider(client *OpenAICompatibleClient, cfg TranscribeConfig) *TranscriptionProvider {
	return &TranscriptionProvider{client: client, cfg: cfg}
}

func (p *TranscriptionProvider) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	return p.client.Transcribe(ctx, p.cfg, filename, audio)
}
