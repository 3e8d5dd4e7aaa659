package cmd

import (
	"context"
	"testing"

	channelpkg "tonefix/pkg/channel"
	"tonefix/pkg/config"
)

type testAdapter struct{ name string }

func (a testAdapter) Name() string { return a.name }

func (a testAdapter) Run(_ context.Context, _ channelpkg.Handler) error { return nil }

func TestEnabledAdaptersRequiresAtLeastOneChannel(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	if _, _, err := enabledAdapters(cfg, nil); err == nil {
		t.Fatal("expected error when no channels are enabled")
	}
}

func TestEnabledAdaptersBuildsSlackChannel(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Channels: config.ChannelsConfig{Slack: config.SlackChannelConfig{Enabled: true}},
		Slack:    config.SlackConfig{BotToken: "xoxb-test"},
	}

	adapters, slackAdapter, err := enabledAdapters(cfg, nil)
	if err != nil {
		t.Fatalf("enabledAdapters: %v", err)
	}
	if len(adapters) != 1 || slackAdapter == nil {
		t.Fatalf("adapters = %d, slackAdapter = %v", len(adapters), slackAdapter)
	}
	if adapters[0].Name() != "slack" {
		t.Fatalf("adapter name = %q, want slack", adapters[0].Name())
	}
}

func TestEnabledAdaptersRejectsTelegramWithoutToken(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Channels: config.ChannelsConfig{Telegram: config.TelegramConfig{Enabled: true}},
	}
	if _, _, err := enabledAdapters(cfg, nil); err == nil {
		t.Fatal("expected error for telegram channel without token")
	}
}

func TestEnabledChannelNames(t *testing.T) {
	t.Parallel()

	adapters := []channelpkg.Adapter{testAdapter{name: "slack"}, testAdapter{name: "telegram"}}
	if got := enabledChannelNames(adapters); got != "slack,telegram" {
		t.Fatalf("enabledChannelNames = %q, want %q", got, "slack,telegram")
	}
}
