package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tonefix/pkg/channel"
	"tonefix/pkg/channel/slackevents"
	"tonefix/pkg/channel/telegram"
	"tonefix/pkg/config"
	"tonefix/pkg/gateway"
	"tonefix/pkg/logger"
	"tonefix/pkg/slack"

	"github.com/spf13/cobra"
)

const (
	slackChannelName    = "slack"
	telegramChannelName = "telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the rewrite service",
	Long:  "Runs the Slack events webhook (and any other enabled channels) with health and readiness endpoints.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.serve")

		adapters, slackAdapter, err := enabledAdapters(cfg, log)
		if err != nil {
			log.Error("Service configuration invalid", "error", err)
			return
		}

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := gateway.NewService(cfg, adapters, log)
		if err != nil {
			log.Error("Failed to initialize service", "error", err)
			return
		}
		if slackAdapter != nil {
			slackAdapter.SetDeliveryReporter(svc.Pipeline())
		}

		log.Info("Service started", "channels", enabledChannelNames(adapters), "backend", cfg.Generation.Backend, "model", cfg.Generation.Model)
		if err := svc.Run(runCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("Service runtime failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// enabledAdapters builds one adapter per enabled channel. The Slack adapter
// is returned separately so the caller can wire delivery reporting once the
// service exists.
func enabledAdapters(cfg *config.Config, log *slog.Logger) ([]channel.Adapter, *slackevents.Adapter, error) {
	adapters := make([]channel.Adapter, 0, 2)
	var slackAdapter *slackevents.Adapter

	if cfg.Channels.Slack.Enabled {
		deliverer := slack.NewClient(cfg.Slack, log)
		adapter, err := slackevents.NewAdapter(cfg.Server, deliverer, log)
		if err != nil {
			return nil, nil, fmt.Errorf("configure %s channel: %w", slackChannelName, err)
		}
		slackAdapter = adapter
		adapters = append(adapters, adapter)
	}

	if cfg.Channels.Telegram.Enabled {
		adapter, err := telegram.NewAdapter(cfg.Channels.Telegram, log)
		if err != nil {
			return nil, nil, fmt.Errorf("configure %s channel: %w", telegramChannelName, err)
		}
		adapters = append(adapters, adapter)
	}

	if len(adapters) == 0 {
		return nil, nil, errors.New("no channels are enabled")
	}

	return adapters, slackAdapter, nil
}

func enabledChannelNames(adapters []channel.Adapter) string {
	names := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		names = append(names, adapter.Name())
	}

	return strings.Join(names, ",")
}
