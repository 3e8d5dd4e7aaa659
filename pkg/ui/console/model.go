package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type consoleMessage struct {
	role    string
	content string
}

type rewriteResultMsg struct {
	text string
	err  error
}

type model struct {
	ctx       context.Context
	rewriteFn RewriteFunc
	info      BackendInfo

	theme     theme
	spinner   spinner.Model
	input     textinput.Model
	viewport  viewport.Model
	messages  []consoleMessage
	width     int
	height    int
	isReady   bool
	isLoading bool
	lastErr   string
	followLog bool
}

func newModel(ctx context.Context, rewriteFn RewriteFunc, info BackendInfo) *model {
	spin := spinner.New()
	spin.Spinner = spinner.Points
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "Type a message to rewrite..."
	in.Focus()
	in.CharLimit = 0

	vp := viewport.New(80, 12)

	return &model{
		ctx:       ctx,
		rewriteFn: rewriteFn,
		info:      info,
		theme:     defaultTheme(),
		spinner:   spin,
		input:     in,
		viewport:  vp,
		width:     100,
		height:    28,
		followLog: true,
	}
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.resizeComponents()
		m.refreshViewport(false)
		m.isReady = true
		return m, nil
	case tea.MouseMsg:
		if handled := m.handleViewportMouse(typed); handled {
			return m, nil
		}
	case tea.KeyMsg:
		switch typed.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}

		if handled := m.handleViewportKey(typed); handled {
			return m, nil
		}

		if typed.String() == "enter" {
			if m.isLoading {
				return m, nil
			}

			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			if isExitCommand(text) {
				return m, tea.Quit
			}

			m.lastErr = ""
			m.messages = append(m.messages, consoleMessage{role: "original", content: text})
			m.input.SetValue("")
			m.isLoading = true
			m.followLog = true
			m.refreshViewport(true)
			return m, tea.Batch(m.spinner.Tick, sendRewriteCmd(m.ctx, m.rewriteFn, text))
		}
	}

	m.input, cmd = m.input.Update(msg)

	switch typed := msg.(type) {
	case spinner.TickMsg:
		if !m.isLoading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	case rewriteResultMsg:
		m.isLoading = false
		if typed.err != nil {
			m.lastErr = typed.err.Error()
			m.messages = append(m.messages, consoleMessage{role: "error", content: typed.err.Error()})
		} else {
			m.lastErr = ""
			m.messages = append(m.messages, consoleMessage{role: "rewritten", content: typed.text})
		}
		m.refreshViewport(false)
	}

	return m, cmd
}

func (m *model) View() string {
	if !m.isReady {
		m.resizeComponents()
		m.refreshViewport(false)
	}

	header := m.theme.header.Width(m.width - 2).Render("✍️  Tonefix Console")
	meta := m.theme.headerMeta.Render(fmt.Sprintf(
		"backend:%s · model:%s · rewrites:%d",
		displayOrNA(m.info.Backend),
		displayOrNA(m.info.Model),
		rewriteTurns(m.messages),
	))
	line := m.theme.divider.Width(m.width - 2).Render(strings.Repeat("═", max(8, m.width-2)))

	status := m.theme.status.Render("💡 Enter send  ·  PgUp/PgDn scroll  ·  End jump latest  ·  Ctrl+C/Esc quit")
	if m.isLoading {
		status = m.theme.statusBusy.Render(fmt.Sprintf("%s ⚡ rewriting...", m.spinner.View()))
	}
	if m.lastErr != "" {
		status = m.theme.statusErr.Render("🚨 last rewrite failed - try again")
	}

	parts := []string{
		header, meta, line,
		m.theme.viewport.Width(m.width - 2).Render(m.viewport.View()),
		status,
		m.theme.inputLabel.Render("Draft") + " " + m.theme.hint.Render("(type /exit, quit, or :q)"),
		m.theme.input.Width(m.width - 2).Render(m.input.View()),
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *model) resizeComponents() {
	w := m.width - 6
	if w < 50 {
		w = 50
	}
	h := m.height - 10
	if h < 8 {
		h = 8
	}

	m.viewport.Width = w
	m.viewport.Height = h
	m.input.Width = w - 2
}

func (m *model) refreshViewport(forceBottom bool) {
	previousOffset := m.viewport.YOffset
	var sections []string
	for _, item := range m.messages {
		switch item.role {
		case "original":
			sections = append(sections, m.renderCard(
				m.theme.originalTitle.Render("▛▚ [ DRAFT ] ▞▜"),
				m.theme.originalBox.Width(m.viewport.Width).Render(strings.TrimSpace(item.content)),
			))
		case "rewritten":
			sections = append(sections, m.renderCard(
				m.theme.rewrittenTitle.Render("▛▚ [ POLISHED ] ▞▜"),
				m.theme.rewrittenBox.Width(m.viewport.Width).Render(strings.TrimSpace(item.content)),
			))
		case "error":
			sections = append(sections, m.renderCard(
				m.theme.errorTitle.Render("▛▚ [ERROR] ▞▜"),
				m.theme.errorBox.Width(m.viewport.Width).Render(strings.TrimSpace(item.content)),
			))
		}
	}

	m.viewport.SetContent(strings.Join(sections, "\n\n"))
	if m.followLog || forceBottom {
		m.viewport.GotoBottom()
		m.followLog = true
		return
	}

	maxOffset := m.viewport.TotalLineCount() - m.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if previousOffset > maxOffset {
		previousOffset = maxOffset
	}
	m.viewport.SetYOffset(previousOffset)
}

func (m *model) renderCard(title string, body string) string {
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

func (m *model) handleViewportKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "pgup", "ctrl+b", "alt+up", "ctrl+up":
		m.viewport.PageUp()
		m.followLog = false
		return true
	case "pgdown", "ctrl+f", "alt+down", "ctrl+down":
		m.viewport.PageDown()
		if m.viewport.AtBottom() {
			m.followLog = true
		}
		return true
	case "home":
		m.viewport.GotoTop()
		m.followLog = false
		return true
	case "end":
		m.viewport.GotoBottom()
		m.followLog = true
		return true
	default:
		return false
	}
}

func (m *model) handleViewportMouse(msg tea.MouseMsg) bool {
	if msg.Action != tea.MouseActionPress {
		return false
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.viewport.ScrollUp(3)
		m.followLog = false
		return true
	case tea.MouseButtonWheelDown:
		m.viewport.ScrollDown(3)
		if m.viewport.AtBottom() {
			m.followLog = true
		}
		return true
	default:
		return false
	}
}

func max(a int, b int) int {
	if a > b {
		return a
	}

	return b
}

func sendRewriteCmd(ctx context.Context, rewriteFn RewriteFunc, text string) tea.Cmd {
	return func() tea.Msg {
		rewritten, err := rewriteFn(ctx, text)
		return rewriteResultMsg{text: rewritten, err: err}
	}
}

func displayOrNA(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "n/a"
	}

	return trimmed
}

func rewriteTurns(messages []consoleMessage) int {
	count := 0
	for _, message := range messages {
		if message.role == "original" {
			count++
		}
	}

	return count
}

func isExitCommand(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "/exit", "quit", ":q":
		return true
	default:
		return false
	}
}
