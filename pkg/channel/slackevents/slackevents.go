// Package slackevents hosts the inbound Slack Events API webhook. It owns
// the HTTP listener, normalizes each delivery, runs the rewrite handler for
// actionable messages, and delivers the reply as a DM before acknowledging.
//
// Acknowledgment bodies are part of the contract with Slack's retry
// machinery: every understood delivery gets a 200 so Slack does not redeliver,
// including backend failures ("hf error"). Only malformed payloads and
// handler panics produce a 500 "error".
package slackevents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tonefix/pkg/bus"
	"tonefix/pkg/channel"
	"tonefix/pkg/config"
	"tonefix/pkg/event"
	"tonefix/pkg/relay"
)

const channelName = "slack"

// Deliverer sends one direct message to a Slack user. Delivery failures are
// logged and reported, never propagated to the webhook acknowledgment.
type Deliverer interface {
	SendDM(ctx context.Context, userID string, text string) error
}

// DeliveryReporter records delivery failures for observability.
type DeliveryReporter interface {
	ReportDeliveryFailure(ctx context.Context, outbound bus.OutboundMessage, err error)
}

// Adapter is the Slack events webhook channel.
type Adapter struct {
	cfg       config.ServerConfig
	deliverer Deliverer
	reporter  DeliveryReporter
	log       *slog.Logger

	handler channel.Handler
}

// NewAdapter builds the webhook adapter.
func NewAdapter(cfg config.ServerConfig, deliverer Deliverer, log *slog.Logger) (*Adapter, error) {
	if deliverer == nil {
		return nil, errors.New("slackevents: deliverer is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Adapter{
		cfg:       cfg,
		deliverer: deliverer,
		log:       log.With("component", "channel.slackevents"),
	}, nil
}

// SetDeliveryReporter wires delivery-failure reporting. Must be called
// before Run; the reporter usually lives in the service built after the
// adapters.
func (a *Adapter) SetDeliveryReporter(reporter DeliveryReporter) {
	a.reporter = reporter
}

func (a *Adapter) Name() string {
	return channelName
}

// Run serves the webhook until ctx is canceled.
func (a *Adapter) Run(ctx context.Context, handler channel.Handler) error {
	if handler == nil {
		return errors.New("slackevents: handler is required")
	}
	a.handler = handler

	host := strings.TrimSpace(a.cfg.Host)
	port := a.cfg.Port
	if port <= 0 {
		port = config.DefaultServerPort
	}

	addr := host + ":" + strconv.Itoa(port)
	server := &http.Server{
		Addr:              addr,
		Handler:           a.httpHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	a.log.Info("Slack webhook listening", "address", addr, "path", a.webhookPath())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve slack webhook: %w", err)
	}

	return nil
}

func (a *Adapter) webhookPath() string {
	path := strings.TrimSpace(a.cfg.WebhookPath)
	if path == "" {
		path = config.DefaultWebhookPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return path
}

func (a *Adapter) httpHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("POST "+a.webhookPath(), a.handleEvent)

	return mux
}

// handleRoot is a liveness probe for platform health checks.
func (a *Adapter) handleRoot(w http.ResponseWriter, _ *http.Request) {
	a.respond(w, http.StatusOK, "ok")
}

func (a *Adapter) handleEvent(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if recovered := recover(); recovered != nil {
			a.log.Error("Webhook handler panicked", "panic", recovered)
			a.respond(w, http.StatusInternalServerError, "error")
		}
	}()

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		a.log.Error("Failed to decode webhook body", "error", err)
		a.respond(w, http.StatusInternalServerError, "error")
		return
	}

	outcome := event.Normalize(raw)
	switch outcome.Kind {
	case event.KindVerification:
		a.respondChallenge(w, outcome.Challenge)
	case event.KindActionable:
		a.handleActionable(r.Context(), w, outcome.Request)
	default:
		a.log.Debug("Webhook delivery not actionable", "reason", outcome.Reason)
		a.respond(w, http.StatusOK, outcome.Reason)
	}
}

// handleActionable runs the rewrite and delivers the reply before acking.
// A failed generation still acks 200 so Slack does not redeliver; the body
// distinguishes it for operators reading access logs.
func (a *Adapter) handleActionable(ctx context.Context, w http.ResponseWriter, req event.Request) {
	a.log.Info("Rewrite requested", "user_id", req.UserID, "text_preview", relay.PreviewPrompt(req.Text))

	outbound := a.handler(ctx, bus.InboundMessage{
		Channel: channelName,
		UserID:  req.UserID,
		Text:    req.Text,
	})

	if err := a.deliverer.SendDM(ctx, outbound.UserID, outbound.Text); err != nil && a.reporter != nil {
		a.reporter.ReportDeliveryFailure(ctx, outbound, err)
	}

	if outbound.Error != "" {
		a.respond(w, http.StatusOK, "hf error")
		return
	}

	a.respond(w, http.StatusOK, "ok")
}

func (a *Adapter) respondChallenge(w http.ResponseWriter, challenge string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"challenge": challenge}); err != nil {
		a.log.Error("Failed to write challenge response", "error", err)
	}
}

func (a *Adapter) respond(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}
