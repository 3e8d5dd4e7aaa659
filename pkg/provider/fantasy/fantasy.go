package fantasy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	core "charm.land/fantasy"
	provideropenai "charm.land/fantasy/providers/openai"

	"tonefix/pkg/config"
)

type languageModelProvider interface {
	LanguageModel(ctx context.Context, modelID string) (core.LanguageModel, error)
}

// Client runs rewrite generations through the fantasy agent runtime over an
// OpenAI-compatible endpoint. Every call is a fresh single-shot generation.
type Client struct {
	provider        languageModelProvider
	requestTimeout  time.Duration
	modelID         string
	maxOutputTokens *int64
	generate        func(context.Context, core.LanguageModel, core.AgentCall) (*core.AgentResult, error)
}

func New(cfg *config.Config) (*Client, error) {
	apiKey := resolveAPIKey(cfg.Providers.OpenAI)
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY must be set for the fantasy backend")
	}

	modelID, err := normalizeOpenAIModel(cfg.Generation.Model)
	if err != nil {
		return nil, err
	}

	providerOptions := []provideropenai.Option{provideropenai.WithAPIKey(apiKey)}
	if baseURL := strings.TrimSpace(cfg.Providers.OpenAI.BaseURL); baseURL != "" {
		providerOptions = append(providerOptions, provideropenai.WithBaseURL(baseURL))
	}
	if organization := strings.TrimSpace(cfg.Providers.OpenAI.Organization); organization != "" {
		providerOptions = append(providerOptions, provideropenai.WithOrganization(organization))
	}
	if project := strings.TrimSpace(cfg.Providers.OpenAI.Project); project != "" {
		providerOptions = append(providerOptions, provideropenai.WithProject(project))
	}

	fantasyProvider, err := provideropenai.New(providerOptions...)
	if err != nil {
		return nil, fmt.Errorf("initialize fantasy openai provider: %w", err)
	}

	client := &Client{
		provider:       fantasyProvider,
		requestTimeout: time.Duration(cfg.Providers.OpenAI.RequestTimeoutSeconds) * time.Second,
		modelID:        modelID,
		generate:       generateWithFantasyAgent,
	}

	if cfg.Generation.MaxNewTokens > 0 {
		maxTokens := int64(cfg.Generation.MaxNewTokens)
		client.maxOutputTokens = &maxTokens
	}

	return client, nil
}

func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if _, err := c.provider.LanguageModel(ctx, c.modelID); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	return nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt is required")
	}

	languageModel, err := c.provider.LanguageModel(ctx, c.modelID)
	if err != nil {
		return "", fmt.Errorf("resolve language model: %w", err)
	}

	call := core.AgentCall{Prompt: prompt}
	if c.maxOutputTokens != nil {
		call.MaxOutputTokens = c.maxOutputTokens
	}

	generate := c.generate
	if generate == nil {
		generate = generateWithFantasyAgent
	}

	result, err := generate(ctx, languageModel, call)
	if err != nil {
		return "", fmt.Errorf("generate failed: %w", err)
	}

	response := extractText(result.Response.Content)
	if response == "" {
		return "", errors.New("generate succeeded but returned no text")
	}

	return response, nil
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

func normalizeOpenAIModel(model string) (string, error) {
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
		return "", fmt.Errorf("model provider %q is not supported by fantasy openai backend", providerID)
	}

	return modelID, nil
}

func extractText(content core.ResponseContent) string {
	lines := make([]string, 0)
	for _, part := range content {
		if part.GetType() != core.ContentTypeText {
			continue
		}

		textPart, ok := core.AsContentType[core.TextContent](part)
		if !ok {
			continue
		}

		line := strings.TrimSpace(textPart.Text)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func generateWithFantasyAgent(ctx context.Context, model core.LanguageModel, call core.AgentCall) (*core.AgentResult, error) {
	runtime := core.NewAgent(model)
	return runtime.Generate(ctx, call)
}
