package cmd

import (
	"strings"
	"testing"
)

func TestResolveText(t *testing.T) {
	original := rewriteText
	t.Cleanup(func() {
		rewriteText = original
	})

	rewriteText = " from-flag "
	if got := resolveText([]string{"from", "args"}); got != "from-flag" {
		t.Fatalf("resolveText with flag = %q, want %q", got, "from-flag")
	}

	rewriteText = ""
	if got := resolveText([]string{"hello", "world"}); got != "hello world" {
		t.Fatalf("resolveText with args = %q, want %q", got, "hello world")
	}

	if got := resolveText(nil); got != "" {
		t.Fatalf("resolveText without input = %q, want empty", got)
	}
}

func TestReadStdinText(t *testing.T) {
	if got := readStdinText(strings.NewReader("  piped draft \n")); got != "piped draft" {
		t.Fatalf("readStdinText = %q, want %q", got, "piped draft")
	}

	if got := readStdinText(strings.NewReader("   ")); got != "" {
		t.Fatalf("readStdinText blank = %q, want empty", got)
	}
}
