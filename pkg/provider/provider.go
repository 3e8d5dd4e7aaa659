package provider

import (
	"context"
	"fmt"
	"log/slog"

	"tonefix/pkg/config"
	providerfantasy "tonefix/pkg/provider/fantasy"
	providerhf "tonefix/pkg/provider/hf"
	provideropenai "tonefix/pkg/provider/openai"
)

// Client is a text-generation backend. Generate performs exactly one attempt;
// callers decide what a failure means.
type Client interface {
	Health(ctx context.Context) error
	Generate(ctx context.Context, prompt string) (string, error)
}

func New(cfg *config.Config) (Client, error) {
	backendID := cfg.Generation.Backend
	if backendID == "" {
		backendID = "hf"
	}

	slog.Default().With("component", "provider.factory").Debug("Resolving generation backend", "backend", backendID)

	switch backendID {
	case "hf":
		return providerhf.New(cfg)
	case "openai":
		return provideropenai.New(cfg)
	case "fantasy":
		return providerfantasy.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported generation backend: %s", backendID)
	}
}
