// Package telegram is an optional second transport for the rewriter: any
// text message sent to the bot is rewritten and answered in the same chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tonefix/pkg/bus"
	"tonefix/pkg/channel"
	"tonefix/pkg/config"
	"tonefix/pkg/relay"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

const channelName = "telegram"
const typingRefreshInterval = 4 * time.Second

// Adapter bridges Telegram updates into rewrite requests.
type Adapter struct {
	cfg       config.TelegramConfig
	allowFrom map[string]struct{}
	log       *slog.Logger
}

// NewAdapter validates Telegram configuration and constructs an adapter instance.
func NewAdapter(cfg config.TelegramConfig, log *slog.Logger) (*Adapter, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("channels.telegram.token is required")
	}

	if log == nil {
		log = slog.Default()
	}

	return &Adapter{
		cfg:       cfg,
		allowFrom: allowFromSet(cfg.AllowFrom),
		log:       log.With("component", "channel.telegram"),
	}, nil
}

// Name returns the channel identifier used in events and logs.
func (a *Adapter) Name() string {
	return channelName
}

// Run starts Telegram long polling and forwards messages through the shared rewrite handler.
func (a *Adapter) Run(ctx context.Context, handler channel.Handler) error {
	if handler == nil {
		return errors.New("handler is required")
	}

	bot, err := telego.NewBot(strings.TrimSpace(a.cfg.Token))
	if err != nil {
		return fmt.Errorf("initialize telegram bot: %w", err)
	}

	updates, err := bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	a.log.Info("Telegram channel started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				if err := ctx.Err(); err != nil {
					return nil
				}
				return errors.New("telegram updates channel closed")
			}

			a.handleUpdate(ctx, bot, handler, update)
		}
	}
}

func (a *Adapter) handleUpdate(ctx context.Context, bot *telego.Bot, handler channel.Handler, update telego.Update) {
	message := update.Message
	if message == nil {
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		// Non-text updates have nothing to rewrite.
		return
	}
	if message.From == nil {
		a.log.Debug("Ignoring message without sender")
		return
	}

	senderID := strconv.FormatInt(message.From.ID, 10)
	if !a.senderAllowed(senderID) {
		a.log.Debug("Ignoring message from unauthorized sender", "sender_id", senderID)
		return
	}

	chatID := strconv.FormatInt(message.Chat.ID, 10)
	inbound := bus.InboundMessage{
		Channel: channelName,
		UserID:  senderID,
		ChatID:  chatID,
		Text:    text,
		Metadata: map[string]string{
			"update_id": strconv.Itoa(update.UpdateID),
		},
	}
	a.log.Info("Rewrite requested", "chat_id", chatID, "sender_id", senderID, "text_preview", relay.PreviewPrompt(text))

	stopTyping := a.startTypingIndicator(ctx, bot, message.Chat.ID)
	outbound := handler(ctx, inbound)
	stopTyping()

	if outbound.Error != "" {
		a.log.Error("Rewrite failed, sending fallback", "chat_id", chatID, "error", outbound.Error)
	}
	a.log.Info("Sending reply", "chat_id", chatID, "text_preview", relay.PreviewPrompt(outbound.Text))

	if _, err := bot.SendMessage(ctx, tu.Message(tu.ID(message.Chat.ID), outbound.Text)); err != nil {
		// Delivery is best-effort, same as the Slack DM path.
		a.log.Error("Failed to send telegram message", "chat_id", chatID, "error", err)
	}
}

// senderAllowed checks whether a sender is permitted by allow_from config.
//
// When no allow list is configured, all senders are accepted.
func (a *Adapter) senderAllowed(senderID string) bool {
	if len(a.allowFrom) == 0 {
		return true
	}

	_, ok := a.allowFrom[strings.TrimSpace(senderID)]
	return ok
}

// allowFromSet normalizes allow_from values into a lookup set.
func allowFromSet(allowFrom []string) map[string]struct{} {
	if len(allowFrom) == 0 {
		return nil
	}

	allowed := make(map[string]struct{}, len(allowFrom))
	for _, value := range allowFrom {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		allowed[trimmed] = struct{}{}
	}

	if len(allowed) == 0 {
		return nil
	}

	return allowed
}

// startTypingIndicator sends an initial typing action and refreshes it periodically
// until the returned cancel function is called.
func (a *Adapter) startTypingIndicator(ctx context.Context, bot *telego.Bot, chatID int64) context.CancelFunc {
	typingCtx, cancel := context.WithCancel(ctx)

	sendTyping := func() {
		if err := bot.SendChatAction(typingCtx, tu.ChatAction(tu.ID(chatID), telego.ChatActionTyping)); err != nil && typingCtx.Err() == nil {
			a.log.Debug("Failed to send typing indicator", "chat_id", chatID, "error", err)
		}
	}

	sendTyping()

	go func() {
		ticker := time.NewTicker(typingRefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-typingCtx.Done():
				return
			case <-ticker.C:
				sendTyping()
			}
		}
	}()

	return cancel
}
