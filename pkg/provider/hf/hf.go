// Package hf calls the Hugging Face Inference API for hosted text
// generation. The response body has no single stable shape, so the client
// interprets it through an ordered list of candidates and always yields some
// string on a successful call.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tonefix/pkg/config"
)

const defaultBaseURL = "https://api-inference.huggingface.co"

// rawBodyLimit bounds the diagnostic serialization used when no recognized
// response shape matches.
const rawBodyLimit = 2000

type Client struct {
	httpClient     *http.Client
	endpoint       string
	token          string
	maxNewTokens   int
	requestTimeout time.Duration
}

type generateRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters *generateParameters `json:"parameters,omitempty"`
}

type generateParameters struct {
	MaxNewTokens int `json:"max_new_tokens"`
}

// New builds the client. The API token is not validated here: a missing
// token simply makes the first call fail with an auth error, which the relay
// contains like any other generation failure.
func New(cfg *config.Config) (*Client, error) {
	model := strings.TrimSpace(cfg.Generation.Model)
	if model == "" {
		return nil, errors.New("generation.model is required")
	}

	baseURL := strings.TrimSpace(cfg.Providers.HF.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient:     &http.Client{},
		endpoint:       strings.TrimRight(baseURL, "/") + "/models/" + model,
		token:          cfg.HFAPIKey(),
		maxNewTokens:   cfg.Generation.MaxNewTokens,
		requestTimeout: time.Duration(cfg.Providers.HF.RequestTimeoutSeconds) * time.Second,
	}, nil
}

func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	log := providerLogger().With("operation", "health")
	startedAt := time.Now()
	log.Debug("provider request started")

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return fmt.Errorf("health check failed: %w", err)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "status", response.StatusCode)
		return fmt.Errorf("health check failed: model endpoint returned %d", response.StatusCode)
	}
	log.Debug("provider request completed", "duration_ms", time.Since(startedAt).Milliseconds())

	return nil
}

// Generate issues a single inference call and interprets the response body.
// Any non-2xx status is a generation failure; no retry.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	log := providerLogger().With("operation", "generate")
	startedAt := time.Now()
	log.Debug("provider request started", "prompt_length", len(prompt))

	payload := generateRequest{Inputs: prompt}
	if c.maxNewTokens > 0 {
		payload.Parameters = &generateParameters{MaxNewTokens: c.maxNewTokens}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return "", fmt.Errorf("generate failed: %w", err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return "", fmt.Errorf("read generate response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		log.Debug("provider request failed",
			"duration_ms", time.Since(startedAt).Milliseconds(),
			"status", response.StatusCode,
			"body", previewBody(responseBody),
		)
		return "", fmt.Errorf("generate failed: endpoint returned %d", response.StatusCode)
	}

	text := interpretResponse(responseBody)
	log.Debug("provider request completed", "duration_ms", time.Since(startedAt).Milliseconds(), "response_length", len(text))

	return text, nil
}

// interpretResponse resolves the reply text from a successful response body,
// trying in order: first array element with generated_text, an object with
// generated_text, a bare JSON string, and finally the serialized body capped
// at rawBodyLimit as a diagnostic fallback.
func interpretResponse(body []byte) string {
	var asArray []map[string]any
	if err := json.Unmarshal(body, &asArray); err == nil && len(asArray) > 0 {
		if text, ok := asArray[0]["generated_text"].(string); ok && text != "" {
			return text
		}
	}

	var asObject map[string]any
	if err := json.Unmarshal(body, &asObject); err == nil {
		if text, ok := asObject["generated_text"].(string); ok && text != "" {
			return text
		}
	}

	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		return asString
	}

	var compacted bytes.Buffer
	serialized := string(body)
	if err := json.Compact(&compacted, body); err == nil {
		serialized = compacted.String()
	}
	if len(serialized) > rawBodyLimit {
		serialized = serialized[:rawBodyLimit]
	}

	return serialized
}

func (c *Client) authorize(request *http.Request) {
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.requestTimeout)
}

func previewBody(body []byte) string {
	const limit = 240
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}

	return text
}

func providerLogger() *slog.Logger {
	return slog.Default().With("component", "provider.hf")
}
