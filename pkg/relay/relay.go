// Package relay drives one rewrite round trip: wrap the user text in the
// fixed instruction, call the generation backend once, and shape the reply.
// The pipeline never returns an error to its caller; a backend failure is
// converted into the fixed fallback message with an error marker so channel
// adapters can ack accordingly.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"tonefix/pkg/bus"
)

// replyLimit caps delivered reply length in bytes.
const replyLimit = 3000

// instructionTemplate is a fixed asset, not configurable per request: it asks
// for a corrected rewrite in a friendly, professional corporate tone and for
// the corrected text only.
const instructionTemplate = "Դու մեր ընկերական, պրոֆեսիոնալ և հստակ կորպորատիվ տոնով գրող օգնականն ես։ Խնդրում եմ ուղղիր կամ վերաշարադրիր հետևյալ տեքստը՝\n\n\"\"\"%s\"\"\"\n\nՊատասխանիր միայն ուղղված տեքստով։"

// FallbackMessage is delivered in place of generated text when the backend
// call fails.
const FallbackMessage = "Ներողություն — AI-ն հիմա հասանելի չէ, փորձեք ավելի ուշ։"

// Generator is the single backend call the pipeline depends on.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Pipeline struct {
	generator Generator
	events    *bus.Bus
	log       *slog.Logger
}

func NewPipeline(generator Generator, events *bus.Bus, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{
		generator: generator,
		events:    events,
		log:       log.With("component", "relay.pipeline"),
	}
}

// BuildPrompt wraps user text in the fixed rewriting instruction.
func BuildPrompt(text string) string {
	return fmt.Sprintf(instructionTemplate, text)
}

// Handle runs one rewrite. It always returns a deliverable outbound message:
// generated text on success, FallbackMessage with Error set on backend
// failure.
func (p *Pipeline) Handle(ctx context.Context, inbound bus.InboundMessage) bus.OutboundMessage {
	p.publish(ctx, bus.Event{Type: bus.EventRewriteReceived, Channel: inbound.Channel, UserID: inbound.UserID})

	generated, err := p.generator.Generate(ctx, BuildPrompt(inbound.Text))
	if err != nil {
		p.log.Error("Generation failed", "channel", inbound.Channel, "user_id", inbound.UserID, "error", err)
		p.publish(ctx, bus.Event{Type: bus.EventRewriteFailed, Channel: inbound.Channel, UserID: inbound.UserID, Error: err.Error()})

		return bus.OutboundMessage{
			Channel: inbound.Channel,
			UserID:  inbound.UserID,
			ChatID:  inbound.ChatID,
			Text:    FallbackMessage,
			Error:   err.Error(),
		}
	}

	reply := Truncate(generated, replyLimit)
	p.publish(ctx, bus.Event{Type: bus.EventRewriteCompleted, Channel: inbound.Channel, UserID: inbound.UserID})

	return bus.OutboundMessage{
		Channel: inbound.Channel,
		UserID:  inbound.UserID,
		ChatID:  inbound.ChatID,
		Text:    reply,
	}
}

// ReportDeliveryFailure records a delivery failure on the event stream.
// Delivery itself is best-effort; this is observability only.
func (p *Pipeline) ReportDeliveryFailure(ctx context.Context, outbound bus.OutboundMessage, err error) {
	p.publish(ctx, bus.Event{Type: bus.EventDeliveryFailed, Channel: outbound.Channel, UserID: outbound.UserID, Error: err.Error()})
}

// Truncate caps text at limit bytes without splitting a rune.
func Truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	cut := text[:limit]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}

	return cut
}

func (p *Pipeline) publish(ctx context.Context, event bus.Event) {
	if p.events == nil {
		return
	}

	p.events.PublishEvent(ctx, event)
}

// PreviewPrompt returns a bounded log-safe preview of prompt text.
func PreviewPrompt(text string) string {
	const limit = 240
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= limit {
		return trimmed
	}

	return trimmed[:limit] + "..."
}
