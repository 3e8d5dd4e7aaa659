package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"tonefix/pkg/bus"
	"tonefix/pkg/config"
	"tonefix/pkg/provider"
	"tonefix/pkg/relay"

	"github.com/spf13/cobra"
)

var rewriteText string

// rewriteCmd runs one rewrite from the command line, without any channel.
var rewriteCmd = &cobra.Command{
	Use:   "rewrite [text]",
	Short: "Rewrite one message from the command line",
	Long:  "Loads configuration, connects to the configured backend, and rewrites one message into corporate tone.",
	Run: func(cmd *cobra.Command, args []string) {
		text := resolveText(args)
		if text == "" {
			text = readStdinText(cmd.InOrStdin())
		}
		if text == "" {
			fmt.Println("nothing to rewrite: pass text as arguments, with --text, or on stdin")
			return
		}

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

		pipeline := relay.NewPipeline(client, nil, nil)
		outbound := pipeline.Handle(context.Background(), bus.InboundMessage{Channel: "cli", Text: text})
		if outbound.Error != "" {
			fmt.Printf("rewrite failed: %s\n", outbound.Error)
		}

		fmt.Println(outbound.Text)
	},
}

func init() {
	rootCmd.AddCommand(rewriteCmd)
	rewriteCmd.Flags().StringVarP(&rewriteText, "text", "t", "", "text to rewrite")
}

func readStdinText(in io.Reader) string {
	data, err := io.ReadAll(in)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

func resolveText(args []string) string {
	if value := strings.TrimSpace(rewriteText); value != "" {
		return value
	}

	if len(args) == 0 {
		return ""
	}

	return strings.TrimSpace(strings.Join(args, " "))
}
