// ABOUTME: Key bindings built from the keybindings config section
// ABOUTME: Also produces the shortcut list shown by the help overlay
package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/ramborogers/cyberai-tui/internal/config"
	"github.com/ramborogers/cyberai-tui/internal/tui/components"
)

type KeyMap struct {
	ToggleSidebar   key.Binding
	NewChat         key.Binding
	DeleteChat      key.Binding
	Regenerate      key.Binding
	CopyMessage     key.Binding
	ToggleReasoning key.Binding
	NextModel       key.Binding
	Send            key.Binding
	Quit            key.Binding
	Help            key.Binding
	Focus           key.Binding
	Up              key.Binding
	Down            key.Binding
	Open            key.Binding
}

func NewKeyMap(kb config.KeybindingsConfig) KeyMap {
	bind := func(k, help string) key.Binding {
		return key.NewBinding(key.WithKeys(k), key.WithHelp(k, help))
	}
	return KeyMap{
		ToggleSidebar:   bind(kb.ToggleSidebar, "Toggle sidebar"),
		NewChat:         bind(kb.NewChat, "New chat"),
		DeleteChat:      bind(kb.DeleteChat, "Delete selected chat"),
		Regenerate:      bind(kb.Regenerate, "Regenerate last answer"),
		CopyMessage:     bind(kb.CopyMessage, "Copy last answer as markdown"),
		ToggleReasoning: bind(kb.ToggleReasoning, "Fold/unfold reasoning"),
		NextModel:       bind(kb.NextModel, "Next model"),
		Send:            bind(kb.SendMessage, "Send message"),
		Quit:            bind(kb.Quit, "Quit"),
		Help:            bind(kb.Help, "Toggle help"),
		Focus:           key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "Switch focus")),
		Up:              key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "Previous chat")),
		Down:            key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "Next chat")),
		Open:            key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "Open chat")),
	}
}

// Shortcuts lists the bindings for the help overlay.
func (k KeyMap) Shortcuts() []components.Shortcut {
	bindings := []key.Binding{
		k.Focus, k.Send, k.NewChat, k.DeleteChat, k.Regenerate, k.CopyMessage,
		k.ToggleReasoning, k.NextModel, k.ToggleSidebar, k.Up, k.Down, k.Open,
		k.Help, k.Quit,
	}
	out := make([]components.Shortcut, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, components.Shortcut{Key: h.Key, Description: h.Desc})
	}
	return out
}
