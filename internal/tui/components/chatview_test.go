// ABOUTME: Tests for ChatView component rendering of render nodes
// ABOUTME: Verifies headers, reasoning fold states, footers, empty state, and revision gating
package components

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramborogers/cyberai-tui/internal/render"
	"github.com/ramborogers/cyberai-tui/internal/tui/theme"
)

func assistantNode(id, content string) render.Node {
	return render.Node{
		ID:        id,
		Role:      "assistant",
		Kind:      render.KindMessage,
		Content:   content,
		Finalized: true,
		Footer: render.Footer{
			Timestamp:  time.Date(2026, 3, 1, 14, 5, 0, 0, time.UTC),
			ModelLabel: "llama3",
			Tokens:     42,
			Copyable:   true,
		},
		Raw: content,
	}
}

func TestNewChatView(t *testing.T) {
	cv := NewChatView(80, 24, theme.DarkTheme)

	require.NotNil(t, cv)
	assert.Equal(t, 80, cv.width)
	assert.Equal(t, 24, cv.height)
	assert.Equal(t, 0, cv.Len())
}

func TestChatView_EmptyState(t *testing.T) {
	cv := NewChatView(80, 24, theme.DarkTheme)
	cv.SetEmptyText("Start a new chat")

	assert.Contains(t, cv.View(), "Start a new chat")
}

func TestChatView_RendersUserAndAssistant(t *testing.T) {
	cv := NewChatView(80, 24, theme.DarkTheme)
	nodes := []render.Node{
		{ID: "1", Role: "user", Kind: render.KindMessage, Content: "Hi there", Finalized: true},
		assistantNode("2", "Hello back"),
	}

	cv.SetNodes(nodes, 1)
	view := cv.View()

	assert.Contains(t, view, "You")
	assert.Contains(t, view, "Hi there")
	assert.Contains(t, view, "llama3")
	assert.Contains(t, view, "Hello back")
	assert.Contains(t, view, "42 tokens")
	assert.Contains(t, view, "14:05")
}

func TestChatView_ReasoningCollapsed(t *testing.T) {
	cv := NewChatView(80, 24, theme.DarkTheme)
	n := assistantNode("2", "answer")
	n.Reasoning = &render.ReasoningBlock{Content: "secret pondering", Collapsed: true}

	cv.SetNodes([]render.Node{n}, 1)
	view := cv.View()

	assert.Contains(t, view, "Reasoning (ctrl+t to expand)")
	assert.NotContains(t, view, "secret pondering")
}

func TestChatView_ReasoningExpanded(t *testing.T) {
	cv := NewChatView(80, 24, theme.DarkTheme)
	n := assistantNode("2", "answer")
	n.Reasoning = &render.ReasoningBlock{Content: "visible pondering"}

	cv.SetNodes([]render.Node{n}, 1)

	assert.Contains(t, cv.View(), "visible pondering")
}

func TestChatView_StreamingFooter(t *testing.T) {
	cv := NewChatView(80, 24, theme.DarkTheme)
	n := assistantNode("2", "partial")
	n.Finalized = false
	n.Raw = ""

	cv.SetNodes([]render.Node{n}, 1)
	view := cv.View()

	assert.Contains(t, view, "streaming")
	assert.NotContains(t, view, "copy")
}

func TestChatView_NoticeNodes(t *testing.T) {
	cv := NewChatView(80, 24, theme.DarkTheme)

	cv.SetNodes([]render.Node{{ID: "n", Kind: render.KindError, Content: "rate limited"}}, 1)

	assert.Contains(t, cv.View(), "rate limited")
}

func TestChatView_SameRevisionSkipsRedraw(t *testing.T) {
	cv := NewChatView(80, 24, theme.DarkTheme)
	cv.SetNodes([]render.Node{assistantNode("1", "first")}, 5)

	cv.SetNodes([]render.Node{assistantNode("1", "changed")}, 5)

	assert.Contains(t, cv.View(), "first")
	assert.NotContains(t, cv.View(), "changed")

	cv.SetNodes([]render.Node{assistantNode("1", "changed")}, 6)

	assert.Contains(t, cv.View(), "changed")
}

func TestChatView_SetSize(t *testing.T) {
	cv := NewChatView(80, 24, theme.DarkTheme)

	cv.SetSize(100, 30)

	assert.Equal(t, 100, cv.viewport.Width)
	assert.Equal(t, 30, cv.viewport.Height)
}
