// ABOUTME: Tests for HelpOverlay component
// ABOUTME: Verifies keyboard shortcut modal overlay display and interaction
package components

import (
	"strings"
	"testing"

	"github.com/ramborogers/cyberai-tui/internal/tui/theme"
)

func testShortcuts() []Shortcut {
	return []Shortcut{
		{"tab", "Switch focus between areas"},
		{"ctrl+b", "Toggle sidebar"},
		{"ctrl+n", "New chat"},
		{"ctrl+s", "Send message"},
		{"ctrl+c", "Quit"},
		{"f1", "Toggle help"},
	}
}

func TestNewHelpOverlay(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
	}{
		{"small size", 40, 20},
		{"medium size", 80, 24},
		{"large size", 120, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overlay := NewHelpOverlay(tt.width, tt.height, theme.DarkTheme, testShortcuts())

			if overlay == nil {
				t.Fatal("NewHelpOverlay returned nil")
			}
			if overlay.width != tt.width {
				t.Errorf("width = %d, want %d", overlay.width, tt.width)
			}
			if overlay.height != tt.height {
				t.Errorf("height = %d, want %d", overlay.height, tt.height)
			}
			if overlay.visible {
				t.Error("expected overlay to be hidden by default")
			}
			if len(overlay.shortcuts) != len(testShortcuts()) {
				t.Errorf("shortcuts = %d, want %d", len(overlay.shortcuts), len(testShortcuts()))
			}
		})
	}
}

func TestHelpOverlay_Toggle(t *testing.T) {
	overlay := NewHelpOverlay(80, 24, theme.DarkTheme, testShortcuts())

	overlay.Toggle()
	if !overlay.IsVisible() {
		t.Error("Toggle() should show overlay")
	}

	overlay.Toggle()
	if overlay.IsVisible() {
		t.Error("Toggle() should hide overlay")
	}
}

func TestHelpOverlay_View(t *testing.T) {
	overlay := NewHelpOverlay(80, 24, theme.DarkTheme, testShortcuts())

	t.Run("hidden overlay returns empty string", func(t *testing.T) {
		if view := overlay.View(); view != "" {
			t.Errorf("View() should return empty string when hidden, got: %s", view)
		}
	})

	t.Run("visible overlay renders content", func(t *testing.T) {
		overlay.Show()
		view := overlay.View()

		if !strings.Contains(view, "Keyboard Shortcuts") {
			t.Error("View() should contain title 'Keyboard Shortcuts'")
		}

		for _, expected := range []string{"ctrl+b", "New chat", "Quit", "Toggle help"} {
			if !strings.Contains(view, expected) {
				t.Errorf("View() should contain '%s'", expected)
			}
		}
	})

	t.Run("view after hiding returns empty string", func(t *testing.T) {
		overlay.Show()
		overlay.Hide()

		if view := overlay.View(); view != "" {
			t.Errorf("View() should return empty string after hiding, got: %s", view)
		}
	})
}

func TestHelpOverlay_SetSize(t *testing.T) {
	overlay := NewHelpOverlay(80, 24, theme.DarkTheme, testShortcuts())

	overlay.Show()
	overlay.SetSize(100, 30)

	if overlay.width != 100 {
		t.Errorf("width after SetSize = %d, want 100", overlay.width)
	}
	if overlay.height != 30 {
		t.Errorf("height after SetSize = %d, want 30", overlay.height)
	}
}
