// Package console is an interactive terminal front end for trying rewrites
// against the configured backend without going through Slack.
package console

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RewriteFunc runs one rewrite round trip for console input.
type RewriteFunc func(ctx context.Context, text string) (string, error)

// BackendInfo labels the header with the active generation backend.
type BackendInfo struct {
	Backend string
	Model   string
}

// Run starts the interactive console and blocks until the user quits.
func Run(ctx context.Context, rewriteFn RewriteFunc, info BackendInfo) error {
	model := newModel(ctx, rewriteFn, info)
	program := tea.NewProgram(model, tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(renderGoodbyeBanner())
	return nil
}

func renderGoodbyeBanner() string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("25")).
		Padding(1, 2)

	return style.Render("✍️  Thanks for using Tonefix")
}
