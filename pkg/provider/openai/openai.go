package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"tonefix/pkg/config"

	osdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

// Client runs rewrite generations against an OpenAI-compatible endpoint.
// Each call is stateless: the rewrite prompt is self-contained, so no
// conversation is kept on the backend.
type Client struct {
	client         osdk.Client
	model          string
	requestTimeout time.Duration
}

func New(cfg *config.Config) (*Client, error) {
	providerCfg := cfg.Providers.OpenAI
	apiKey := resolveAPIKey(providerCfg)
	if apiKey == "" {
		return nil, errors.New("providers.openai.api_key_env is required or OPENAI_API_KEY must be set")
	}

	model, err := normalizeModel(cfg.Generation.Model)
	if err != nil {
		return nil, err
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL := strings.TrimSpace(providerCfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if organization := strings.TrimSpace(providerCfg.Organization); organization != "" {
		opts = append(opts, option.WithOrganization(organization))
	}
	if project := strings.TrimSpace(providerCfg.Project); project != "" {
		opts = append(opts, option.WithProject(project))
	}

	requestTimeout := time.Duration(providerCfg.RequestTimeoutSeconds) * time.Second
	if requestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(requestTimeout))
	}

	return &Client{
		client:         osdk.NewClient(opts...),
		model:          model,
		requestTimeout: requestTimeout,
	}, nil
}

func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	log := providerLogger().With("operation", "health")
	startedAt := time.Now()
	log.Debug("provider request started")

	if _, err := c.client.Models.List(ctx); err != nil {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Debug("provider request completed", "duration_ms", time.Since(startedAt).Milliseconds())

	return nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	log := providerLogger().With("operation", "generate")
	startedAt := time.Now()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt is required")
	}
	log.Debug("provider request started", "model", c.model, "prompt_length", len(prompt))

	response, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{OfString: osdk.String(prompt)},
	})
	if err != nil {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return "", fmt.Errorf("generate failed: %w", err)
	}

	text := strings.TrimSpace(response.OutputText())
	if text == "" {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", "no output text")
		return "", errors.New("generate succeeded but returned no text")
	}
	log.Debug("provider request completed", "duration_ms", time.Since(startedAt).Milliseconds(), "response_length", len(text))

	return text, nil
}

func providerLogger() *slog.Logger {
	return slog.Default().With("component", "provider.openai")
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.requestTimeout)
}

func resolveAPIKey(cfg config.OpenAIProviderConfig) string {
	if apiKeyEnv := strings.TrimSpace(cfg.APIKeyEnv); apiKeyEnv != "" {
		if apiKey := strings.TrimSpace(os.Getenv(apiKeyEnv)); apiKey != "" {
			return apiKey
		}
	}

	return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
}

func normalizeModel(model string) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return "", errors.New("generation.model is required")
	}

	parts := strings.SplitN(model, "/", 2)
	if len(parts) != 2 {
		return model, nil
	}

	providerID := strings.TrimSpace(parts[0])
	modelID := strings.TrimSpace(parts[1])
	if providerID == "" || modelID == "" {
		return "", errors.New("generation.model is invalid")
	}
	if providerID != "openai" {
		return "", fmt.Errorf("model provider %q is not supported by openai backend", providerID)
	}

	return modelID, nil
}
