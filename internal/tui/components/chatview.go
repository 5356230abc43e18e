// ABOUTME: ChatView component for displaying render nodes with scrolling
// ABOUTME: Uses bubbles viewport and redraws only when the node store revision changes
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ramborogers/cyberai-tui/internal/render"
	"github.com/ramborogers/cyberai-tui/internal/tui/theme"
)

type ChatView struct {
	width    int
	height   int
	theme    theme.Theme
	viewport viewport.Model
	nodes    []render.Node
	revision uint64
	empty    string
	toggle   string
}

func NewChatView(width, height int, t theme.Theme) *ChatView {
	vp := viewport.New(width, height)
	vp.Style = t.ChatViewStyle()

	return &ChatView{
		width:    width,
		height:   height,
		theme:    t,
		viewport: vp,
		empty:    "No messages yet",
		toggle:   "ctrl+t",
	}
}

// SetNodes replaces the displayed nodes. Nothing is redrawn when revision
// matches the last one seen. The view follows new output only if it was
// already scrolled to the bottom.
func (cv *ChatView) SetNodes(nodes []render.Node, revision uint64) {
	if revision == cv.revision && len(nodes) == len(cv.nodes) {
		return
	}
	follow := cv.viewport.AtBottom() || len(cv.nodes) == 0
	cv.nodes = nodes
	cv.revision = revision
	cv.updateViewport()
	if follow {
		cv.viewport.GotoBottom()
	}
}

// SetEmptyText sets the placeholder shown when there are no nodes.
func (cv *ChatView) SetEmptyText(text string) {
	cv.empty = text
	if len(cv.nodes) == 0 {
		cv.updateViewport()
	}
}

// SetToggleKey sets the key named in collapsed reasoning headers.
func (cv *ChatView) SetToggleKey(key string) {
	cv.toggle = key
}

func (cv *ChatView) Len() int {
	return len(cv.nodes)
}

func (cv *ChatView) formatNode(n render.Node) string {
	if n.Kind != render.KindMessage {
		return FormatNotice(n, cv.theme, cv.width)
	}

	var sb strings.Builder

	icon := "👤"
	label := "You"
	if n.Role == "assistant" {
		icon = "🤖"
		label = "Assistant"
		if n.Footer.ModelLabel != "" {
			label = n.Footer.ModelLabel
		}
	}
	header := fmt.Sprintf("%s %s", icon, cv.theme.RoleStyle(n.Role).Render(label))
	sb.WriteString(header)
	sb.WriteString("\n")

	if n.Reasoning != nil {
		sb.WriteString(cv.formatReasoning(n))
		sb.WriteString("\n")
	}

	switch {
	case n.Content != "":
		sb.WriteString(n.Content)
	case !n.Finalized:
		sb.WriteString(cv.theme.DimStyle().Render("…"))
	}
	sb.WriteString("\n")
	sb.WriteString(cv.formatFooter(n))
	sb.WriteString("\n")

	return sb.String()
}

func (cv *ChatView) formatReasoning(n render.Node) string {
	if n.Reasoning.Collapsed {
		return cv.theme.DimStyle().Render(fmt.Sprintf("▸ Reasoning (%s to expand)", cv.toggle))
	}
	title := cv.theme.DimStyle().Render(fmt.Sprintf("▾ Reasoning (%s to collapse)", cv.toggle))
	return title + "\n" + cv.theme.ReasoningStyle().Render(n.Reasoning.Content)
}

func (cv *ChatView) formatFooter(n render.Node) string {
	parts := []string{n.Footer.Timestamp.Format("15:04")}
	if n.Role == "assistant" {
		if n.Footer.Tokens > 0 {
			parts = append(parts, fmt.Sprintf("%d tokens", n.Footer.Tokens))
		}
		if !n.Finalized {
			parts = append(parts, "streaming")
		} else if n.Footer.Copyable && n.Raw != "" {
			parts = append(parts, "📋 copy")
		}
	}
	return cv.theme.DimStyle().Render(strings.Join(parts, " · "))
}

func (cv *ChatView) updateViewport() {
	if len(cv.nodes) == 0 {
		cv.viewport.SetContent(cv.theme.DimStyle().Render(cv.empty))
		return
	}

	var sb strings.Builder
	for i, n := range cv.nodes {
		sb.WriteString(cv.formatNode(n))
		// Add spacing between messages
		if i < len(cv.nodes)-1 {
			sb.WriteString("\n")
		}
	}

	cv.viewport.SetContent(sb.String())
}

func (cv *ChatView) ScrollToBottom() {
	cv.viewport.GotoBottom()
}

func (cv *ChatView) View() string {
	if len(cv.nodes) == 0 {
		return cv.theme.ChatViewStyle().
			Width(cv.width).
			Height(cv.height).
			Render(cv.theme.DimStyle().Render(cv.empty))
	}

	return cv.viewport.View()
}

func (cv *ChatView) SetSize(width, height int) {
	cv.width = width
	cv.height = height
	cv.viewport.Width = width
	cv.viewport.Height = height
	cv.updateViewport()
}

func (cv *ChatView) Init() tea.Cmd {
	return nil
}

func (cv *ChatView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	cv.viewport, cmd = cv.viewport.Update(msg)
	return cv, cmd
}
