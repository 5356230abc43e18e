// ABOUTME: Sidebar component listing chats and the active model
// ABOUTME: Handles chat navigation, rendering, and highlighting the selected entry
package components

import (
	"fmt"
	"strings"

	"github.com/ramborogers/cyberai-tui/internal/protocol"
	"github.com/ramborogers/cyberai-tui/internal/tui/theme"
)

type Sidebar struct {
	width  int
	height int
	theme  theme.Theme

	chats    []protocol.Chat
	activeID int64
	cursor   int

	models      []protocol.Model
	activeModel int64
}

func NewSidebar(width, height int, t theme.Theme) *Sidebar {
	return &Sidebar{
		width:  width,
		height: height,
		theme:  t,
	}
}

// SetChats replaces the chat list and moves the cursor to the active chat.
func (s *Sidebar) SetChats(chats []protocol.Chat, activeID int64) {
	s.chats = chats
	s.activeID = activeID

	for i, c := range chats {
		if c.ID == activeID {
			s.cursor = i
			return
		}
	}

	// Clamp cursor to valid range
	if s.cursor >= len(chats) {
		s.cursor = len(chats) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *Sidebar) SetModels(models []protocol.Model, activeID int64) {
	s.models = models
	s.activeModel = activeID
}

func (s *Sidebar) CursorDown() {
	if len(s.chats) == 0 {
		return
	}

	s.cursor++
	if s.cursor >= len(s.chats) {
		s.cursor = 0 // Wrap to top
	}
}

func (s *Sidebar) CursorUp() {
	if len(s.chats) == 0 {
		return
	}

	s.cursor--
	if s.cursor < 0 {
		s.cursor = len(s.chats) - 1 // Wrap to bottom
	}
}

// SelectedChat returns the chat under the cursor.
func (s *Sidebar) SelectedChat() (protocol.Chat, bool) {
	if len(s.chats) == 0 || s.cursor < 0 || s.cursor >= len(s.chats) {
		return protocol.Chat{}, false
	}
	return s.chats[s.cursor], true
}

func (s *Sidebar) View() string {
	var items []string

	items = append(items, s.theme.SectionTitleStyle().Render("CHATS"), "")

	if s.activeID == 0 {
		items = append(items, s.theme.ActiveItemStyle().Width(s.width-4).Render("✎ New chat"))
	}

	if len(s.chats) == 0 {
		items = append(items, s.theme.DimStyle().Render("No chats yet"))
	}

	for i, c := range s.chats {
		title := c.Title
		if title == "" {
			title = "Untitled Chat"
		}
		line := fmt.Sprintf("%s %s", s.marker(c.ID), truncate(title, s.width-8))

		// Style based on selection
		if i == s.cursor {
			line = s.theme.ActiveItemStyle().
				Width(s.width - 4).
				Render(line)
		} else {
			line = s.theme.InactiveItemStyle().
				Width(s.width - 4).
				Render(line)
		}
		items = append(items, line)
	}

	items = append(items, "", s.theme.SectionTitleStyle().Render("MODEL"))
	items = append(items, s.modelLine())

	content := strings.Join(items, "\n")

	return s.theme.SidebarStyle().
		Width(s.width - 2).
		Height(s.height).
		Render(content)
}

func (s *Sidebar) marker(id int64) string {
	if id == s.activeID {
		return "●"
	}
	return "○"
}

func (s *Sidebar) modelLine() string {
	for _, m := range s.models {
		if m.ID == s.activeModel {
			name := m.Name
			if m.ProviderType != "" {
				name = fmt.Sprintf("%s (%s)", m.Name, m.ProviderType)
			}
			return s.theme.InactiveItemStyle().Render(truncate(name, s.width-6))
		}
	}
	return s.theme.DimStyle().Render("No models available")
}

func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// truncate shortens s to max runes, ending with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if max < 4 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
