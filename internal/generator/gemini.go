package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiConfig holds the settings for the Gemini REST client.
type GeminiConfig struct {
	// APIKey authenticates the request (x-goog-api-key header).
	APIKey string
	// Model is the model name, e.g. "gemini-2.5-flash".
	Model string
	// BaseURL overrides the API endpoint. Tests point this at an httptest
	// server; leave empty for the real API.
	BaseURL string
}

// DefaultGeminiConfig returns the production settings for the given API key.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey: apiKey,
		Model:  "gemini-2.5-flash",
	}
}

// Gemini implements Generator against Google's Generative Language REST API.
//
// The file content travels inline (base64 in the request body) rather than
// through the separate file-upload API — study notes are small enough that
// the extra round-trip buys nothing.
type Gemini struct {
	config GeminiConfig
	client *http.Client
}

var _ Generator = (*Gemini)(nil)

// NewGemini creates a Gemini client.
//
// The http.Client carries no timeout of its own; callers control latency
// through the context deadline, which also cancels the underlying request.
func NewGemini(cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("generator: Gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Gemini{
		config: cfg,
		client: &http.Client{},
	}, nil
}

// Request/response wire types. Gemini returns a much larger object — we
// only declare the fields we read.

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"` // encoding/json base64-encodes []byte
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends one generateContent call: the prompt for the requested
// kind plus the file bytes, and returns the model's text response with any
// markdown code fences stripped.
func (g *Gemini) Generate(ctx context.Context, data []byte, mimeType string, kind Kind, count int) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: Prompt(kind, count)},
				{InlineData: &geminiInlineData{MimeType: mimeType, Data: data}},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("generator: encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.config.BaseURL, g.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("generator: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.config.APIKey)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		// Includes context deadline exhaustion — the caller checks
		// ctx.Err() to tell a timeout apart from a network failure.
		return "", fmt.Errorf("generator: calling Gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("generator: reading response: %w", err)
	}

	var decoded geminiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("generator: decoding response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		return "", fmt.Errorf("generator: Gemini returned status %d: %s", resp.StatusCode, msg)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generator: Gemini returned no candidates (took %s)", time.Since(start).Round(time.Millisecond))
	}

	// Models sometimes wrap the "one line of JSON" answer in ``` fences
	// despite the prompt; strip them the way the original client did.
	text := decoded.Candidates[0].Content.Parts[0].Text
	text = strings.TrimSpace(strings.ReplaceAll(text, "```", ""))
	text = strings.TrimPrefix(text, "json\n")

	return text, nil
}
