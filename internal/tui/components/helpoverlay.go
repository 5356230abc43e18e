// ABOUTME: HelpOverlay component for displaying keyboard shortcuts
// ABOUTME: Shows a centered modal listing the configured key bindings
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ramborogers/cyberai-tui/internal/tui/theme"
)

// Shortcut represents a keyboard shortcut with its description
type Shortcut struct {
	Key         string
	Description string
}

// HelpOverlay displays a modal overlay with keyboard shortcuts
type HelpOverlay struct {
	width     int
	height    int
	theme     theme.Theme
	visible   bool
	shortcuts []Shortcut
}

// NewHelpOverlay creates a hidden help overlay listing shortcuts.
func NewHelpOverlay(width, height int, t theme.Theme, shortcuts []Shortcut) *HelpOverlay {
	return &HelpOverlay{
		width:     width,
		height:    height,
		theme:     t,
		shortcuts: shortcuts,
	}
}

func (h *HelpOverlay) Show() {
	h.visible = true
}

func (h *HelpOverlay) Hide() {
	h.visible = false
}

func (h *HelpOverlay) IsVisible() bool {
	return h.visible
}

func (h *HelpOverlay) Toggle() {
	h.visible = !h.visible
}

func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the help overlay centered in the window
func (h *HelpOverlay) View() string {
	if !h.visible {
		return ""
	}

	var content strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.theme.Primary)

	content.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	content.WriteString("\n\n")

	// Find max key length for alignment
	maxKeyLen := 0
	for _, sc := range h.shortcuts {
		if lipgloss.Width(sc.Key) > maxKeyLen {
			maxKeyLen = lipgloss.Width(sc.Key)
		}
	}

	keyStyle := lipgloss.NewStyle().
		Foreground(h.theme.Success).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(h.theme.Foreground)

	for _, sc := range h.shortcuts {
		paddedKey := sc.Key + strings.Repeat(" ", maxKeyLen-lipgloss.Width(sc.Key))
		content.WriteString(fmt.Sprintf("  %s  %s\n",
			keyStyle.Render(paddedKey),
			descStyle.Render(sc.Description)))
	}

	modalWidth := 50
	if modalWidth > h.width-4 {
		modalWidth = h.width - 4
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.theme.Primary).
		Padding(1, 2).
		Width(modalWidth)

	modal := boxStyle.Render(content.String())

	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, modal)
}
