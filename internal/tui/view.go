// ABOUTME: View rendering for the TUI (converts model state to terminal output)
// ABOUTME: Implements the Elm architecture View function
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	// Help overlay replaces the whole screen and centers itself
	if m.helpOverlay.IsVisible() {
		return m.helpOverlay.View()
	}

	chat := m.chatView.View()

	// Notifications stack over the top of the chat column so the layout height never changes
	if notificationView := m.notifications.View(); notificationView != "" {
		chatHeight := lipgloss.Height(chat)
		chat = lipgloss.NewStyle().MaxHeight(chatHeight).Render(
			lipgloss.JoinVertical(lipgloss.Right, notificationView, chat),
		)
	}

	// Layout: chatView / inputArea
	mainContent := lipgloss.JoinVertical(
		lipgloss.Top,
		chat,
		m.inputArea.View(),
	)

	if m.sidebarVisible {
		// Layout: sidebar | (chatView / inputArea)
		mainContent = lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.sidebar.View(),
			mainContent,
		)
	}

	// Add status bar at the bottom
	return lipgloss.JoinVertical(
		lipgloss.Top,
		mainContent,
		m.statusBar.View(),
	)
}
