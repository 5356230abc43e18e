// ABOUTME: StatusBar component for connection state, active chat and model, and thinking indicator
// ABOUTME: The thinking indicator animates with a bubbles spinner while a reply is pending
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ramborogers/cyberai-tui/internal/tui/theme"
)

// Connection states shown in the status bar.
const (
	StatusConnected    = "connected"
	StatusConnecting   = "connecting"
	StatusDisconnected = "disconnected"
)

type StatusBar struct {
	width            int
	theme            theme.Theme
	connectionStatus string
	chatTitle        string
	modelName        string
	status           string
	hint             string
	thinking         bool
	spinner          spinner.Model
}

func NewStatusBar(width int, t theme.Theme) *StatusBar {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &StatusBar{
		width:            width,
		theme:            t,
		connectionStatus: StatusDisconnected,
		hint:             "Tab: Navigate, F1: Help",
		spinner:          sp,
	}
}

func (s *StatusBar) SetConnectionStatus(status string) {
	s.connectionStatus = status
}

func (s *StatusBar) SetChat(title string) {
	s.chatTitle = title
}

func (s *StatusBar) SetModel(name string) {
	s.modelName = name
}

// SetStatus shows the latest server status line.
func (s *StatusBar) SetStatus(text string) {
	s.status = text
}

func (s *StatusBar) SetHint(hint string) {
	s.hint = hint
}

// SetThinking turns the indicator on or off. Turning it on returns the
// spinner's first tick.
func (s *StatusBar) SetThinking(on bool) tea.Cmd {
	was := s.thinking
	s.thinking = on
	if on && !was {
		return s.spinner.Tick
	}
	return nil
}

func (s *StatusBar) Thinking() bool {
	return s.thinking
}

// Update advances the spinner while thinking. Ticks are dropped otherwise,
// which stops the animation loop.
func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || !s.thinking {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(tick)
	return cmd
}

func (s *StatusBar) SetSize(width int) {
	s.width = width
}

func (s *StatusBar) View() string {
	var statusIcon string
	var statusText string

	switch s.connectionStatus {
	case StatusConnected:
		statusIcon = "🟢"
		statusText = "Connected"
	case StatusConnecting:
		statusIcon = "🟡"
		statusText = "Connecting"
	default:
		statusIcon = "🔴"
		statusText = "Disconnected"
	}

	parts := []string{fmt.Sprintf("[%s %s]", statusIcon, statusText)}

	if s.chatTitle != "" {
		parts = append(parts, "Chat: "+s.chatTitle)
	}
	if s.modelName != "" {
		parts = append(parts, "Model: "+s.modelName)
	}
	if s.thinking {
		label := "Thinking..."
		if s.status != "" {
			label = s.status
		}
		parts = append(parts, s.spinner.View()+" "+label)
	}

	leftContent := strings.Join(parts, " ")

	// Right-align the hint when it fits
	padding := s.width - lipgloss.Width(leftContent) - lipgloss.Width(s.hint) - 7
	fullContent := leftContent
	if padding >= 1 {
		fullContent = fmt.Sprintf("%s%s | %s", leftContent, strings.Repeat(" ", padding), s.hint)
	}

	return s.theme.StatusBarStyle().
		Width(s.width).
		MaxHeight(1).
		Render(fullContent)
}
