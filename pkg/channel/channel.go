package channel

import (
	"context"

	"tonefix/pkg/bus"
)

// Handler runs one rewrite for an inbound message. It never fails: a backend
// problem surfaces as a fallback outbound message with its Error field set.
type Handler func(context.Context, bus.InboundMessage) bus.OutboundMessage

// Adapter bridges one external transport (the Slack events webhook, Telegram)
// into the relay.
type Adapter interface {
	Name() string
	Run(context.Context, Handler) error
}
