package relay

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tonefix/pkg/bus"
)

type scriptedGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func TestBuildPromptEmbedsText(t *testing.T) {
	prompt := BuildPrompt("helo wrold")

	if !strings.Contains(prompt, `"""helo wrold"""`) {
		t.Fatalf("prompt missing quoted text: %q", prompt)
	}
	if !strings.Contains(prompt, "Պատասխանիր միայն ուղղված տեքստով") {
		t.Fatal("prompt missing fixed instruction suffix")
	}
}

func TestHandleSuccess(t *testing.T) {
	generator := &scriptedGenerator{reply: "Hello world"}
	pipeline := NewPipeline(generator, nil, nil)

	out := pipeline.Handle(context.Background(), bus.InboundMessage{Channel: "slack", UserID: "U1", Text: "helo wrold"})

	if out.Error != "" {
		t.Fatalf("unexpected error marker: %q", out.Error)
	}
	if out.Text != "Hello world" {
		t.Fatalf("text = %q, want %q", out.Text, "Hello world")
	}
	if out.UserID != "U1" || out.Channel != "slack" {
		t.Fatalf("routing fields lost: %+v", out)
	}
	if len(generator.prompts) != 1 {
		t.Fatalf("generate calls = %d, want 1", len(generator.prompts))
	}
	if !strings.Contains(generator.prompts[0], "helo wrold") {
		t.Fatalf("prompt missing user text: %q", generator.prompts[0])
	}
}

func TestHandleGenerationFailureSubstitutesFallback(t *testing.T) {
	generator := &scriptedGenerator{err: errors.New("endpoint returned 503")}
	pipeline := NewPipeline(generator, nil, nil)

	out := pipeline.Handle(context.Background(), bus.InboundMessage{Channel: "slack", UserID: "U1", Text: "hi"})

	if out.Text != FallbackMessage {
		t.Fatalf("text = %q, want fallback", out.Text)
	}
	if out.Error == "" {
		t.Fatal("expected error marker on generation failure")
	}
}

func TestHandleTruncatesReply(t *testing.T) {
	generator := &scriptedGenerator{reply: strings.Repeat("a", replyLimit+500)}
	pipeline := NewPipeline(generator, nil, nil)

	out := pipeline.Handle(context.Background(), bus.InboundMessage{Channel: "slack", UserID: "U1", Text: "hi"})

	if len(out.Text) != replyLimit {
		t.Fatalf("len = %d, want %d", len(out.Text), replyLimit)
	}
}

func TestHandlePublishesLifecycleEvents(t *testing.T) {
	events := bus.New()
	t.Cleanup(events.Close)
	stream, unsub := events.SubscribeEvents(context.Background(), 8)
	defer unsub()

	pipeline := NewPipeline(&scriptedGenerator{reply: "ok"}, events, nil)
	pipeline.Handle(context.Background(), bus.InboundMessage{Channel: "slack", UserID: "U1", Text: "hi"})

	first := <-stream
	if first.Type != bus.EventRewriteReceived {
		t.Fatalf("first event = %q, want received", first.Type)
	}
	second := <-stream
	if second.Type != bus.EventRewriteCompleted {
		t.Fatalf("second event = %q, want completed", second.Type)
	}
}

func TestHandleFailurePublishesFailedEvent(t *testing.T) {
	events := bus.New()
	t.Cleanup(events.Close)
	stream, unsub := events.SubscribeEvents(context.Background(), 8)
	defer unsub()

	pipeline := NewPipeline(&scriptedGenerator{err: errors.New("boom")}, events, nil)
	pipeline.Handle(context.Background(), bus.InboundMessage{Channel: "slack", UserID: "U1", Text: "hi"})

	<-stream // received
	failed := <-stream
	if failed.Type != bus.EventRewriteFailed {
		t.Fatalf("event = %q, want failed", failed.Type)
	}
	if failed.Error == "" {
		t.Fatal("expected error detail on failed event")
	}
}

func TestTruncatePreservesRuneBoundary(t *testing.T) {
	text := strings.Repeat("ա", 100) // 2-byte rune

	got := Truncate(text, 101)
	if len(got) != 100 {
		t.Fatalf("len = %d, want 100 (backed off to rune boundary)", len(got))
	}
	if !strings.HasSuffix(got, "ա") {
		t.Fatal("expected valid trailing rune")
	}
}

func TestTruncateShortTextUntouched(t *testing.T) {
	if got := Truncate("short", 3000); got != "short" {
		t.Fatalf("Truncate = %q", got)
	}
}
