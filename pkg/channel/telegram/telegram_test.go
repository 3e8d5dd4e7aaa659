package telegram

import (
	"log/slog"
	"testing"

	"tonefix/pkg/config"
)

func TestNewAdapterRequiresToken(t *testing.T) {
	if _, err := NewAdapter(config.TelegramConfig{Token: "  "}, slog.Default()); err == nil {
		t.Fatal("expected error for missing token")
	}

	adapter, err := NewAdapter(config.TelegramConfig{Token: "t0ken", AllowFrom: []string{"123"}}, slog.Default())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	if adapter.Name() != "telegram" {
		t.Fatalf("Name = %q, want telegram", adapter.Name())
	}
}

func TestAllowFromSet(t *testing.T) {
	allowed := allowFromSet([]string{" 123 ", "", "456", "123"})
	if len(allowed) != 2 {
		t.Fatalf("allowFromSet len = %d, want 2", len(allowed))
	}
	if _, ok := allowed["123"]; !ok {
		t.Fatal("allowFromSet missing 123")
	}
	if _, ok := allowed["456"]; !ok {
		t.Fatal("allowFromSet missing 456")
	}

	if allowFromSet([]string{" ", ""}) != nil {
		t.Fatal("expected nil set for blank-only values")
	}
}

func TestSenderAllowed(t *testing.T) {
	adapter := &Adapter{allowFrom: map[string]struct{}{"1": {}}}
	if !adapter.senderAllowed("1") {
		t.Fatal("expected sender 1 to be allowed")
	}
	if adapter.senderAllowed("2") {
		t.Fatal("expected sender 2 to be denied")
	}

	adapter.allowFrom = nil
	if !adapter.senderAllowed("any") {
		t.Fatal("expected sender to be allowed when allowlist empty")
	}
}
