package cmd

import (
	"context"
	"errors"
	"fmt"

	"tonefix/pkg/config"
	"tonefix/pkg/provider"
	"tonefix/pkg/relay"
	"tonefix/pkg/ui/console"

	"github.com/spf13/cobra"
)

// consoleCmd starts the interactive terminal UI against the configured backend.
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive rewrite console",
	Long:  "Starts a terminal UI where each entered message is rewritten into corporate tone by the configured backend.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		client, err := provider.New(cfg)
		if err != nil {
			fmt.Printf("failed to initialize provider: %v\n", err)
			return
		}

		rewriteFn := func(ctx context.Context, text string) (string, error) {
			generated, err := client.Generate(ctx, relay.BuildPrompt(text))
			if err != nil {
				return "", err
			}
			return generated, nil
		}

		info := console.BackendInfo{Backend: cfg.Generation.Backend, Model: cfg.Generation.Model}
		if err := console.Run(cmd.Context(), rewriteFn, info); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Printf("console failed: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
