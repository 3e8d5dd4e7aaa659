package provider

import (
	"testing"

	"tonefix/pkg/config"
	providerhf "tonefix/pkg/provider/hf"
	provideropenai "tonefix/pkg/provider/openai"
)

func TestNewDefaultsToHFBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Generation.Model = "google/flan-t5-small"

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, ok := client.(*providerhf.Client); !ok {
		t.Fatalf("expected *hf.Client, got %T", client)
	}
}

func TestNewReturnsOpenAIBackend(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := &config.Config{}
	cfg.Generation.Backend = "openai"
	cfg.Generation.Model = "openai/gpt-5.2"

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, ok := client.(*provideropenai.Client); !ok {
		t.Fatalf("expected *openai.Client, got %T", client)
	}
}

func TestNewReturnsErrorForUnsupportedBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Generation.Backend = "unknown"

	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}
