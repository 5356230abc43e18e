// ABOUTME: Model and chat lists replaced wholesale by server snapshots
// ABOUTME: Keeps the selected id across snapshots when it still exists
package client

import (
	"fmt"
	"sync"

	"github.com/ramborogers/cyberai-tui/internal/protocol"
)

// snapshotList holds an immutable snapshot plus a selected id (0 = none).
type snapshotList[T any] struct {
	mu       sync.RWMutex
	items    []T
	selected int64
	idOf     func(T) int64
}

// apply replaces the items and repairs the selection. It reports whether
// the selected id changed.
func (l *snapshotList[T]) apply(items []T, keepNone bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = append([]T(nil), items...)
	prev := l.selected

	switch {
	case prev == 0 && keepNone:
	case l.indexLocked(prev) >= 0:
	case len(l.items) > 0:
		l.selected = l.idOf(l.items[0])
	default:
		l.selected = 0
	}
	return l.selected != prev
}

func (l *snapshotList[T]) indexLocked(id int64) int {
	if id == 0 {
		return -1
	}
	for i, it := range l.items {
		if l.idOf(it) == id {
			return i
		}
	}
	return -1
}

func (l *snapshotList[T]) find(id int64) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var zero T
	if i := l.indexLocked(id); i >= 0 {
		return l.items[i], true
	}
	return zero, false
}

func (l *snapshotList[T]) selectID(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.indexLocked(id) < 0 {
		return fmt.Errorf("id %d not in list", id)
	}
	l.selected = id
	return nil
}

func (l *snapshotList[T]) snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]T(nil), l.items...)
}

func (l *snapshotList[T]) selectedID() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.selected
}

func (l *snapshotList[T]) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// ModelList is the set of models the user may chat with.
type ModelList struct {
	list snapshotList[protocol.Model]
}

func NewModelList() *ModelList {
	return &ModelList{list: snapshotList[protocol.Model]{
		idOf: func(m protocol.Model) int64 { return m.ID },
	}}
}

// Apply replaces the list with a snapshot and reports whether the active
// model changed.
func (m *ModelList) Apply(models []protocol.Model) bool {
	return m.list.apply(models, false)
}

func (m *ModelList) Items() []protocol.Model {
	return m.list.snapshot()
}

func (m *ModelList) Len() int {
	return m.list.len()
}

// SelectedID returns the active model id, 0 when the list is empty.
func (m *ModelList) SelectedID() int64 {
	return m.list.selectedID()
}

func (m *ModelList) Selected() (protocol.Model, bool) {
	return m.list.find(m.list.selectedID())
}

func (m *ModelList) Select(id int64) error {
	if err := m.list.selectID(id); err != nil {
		return fmt.Errorf("select model: %w", err)
	}
	return nil
}

// ModelName returns the display name for id, or "Model #<id>" if unknown.
func (m *ModelList) ModelName(id int64) string {
	if model, ok := m.list.find(id); ok && model.Name != "" {
		return model.Name
	}
	return fmt.Sprintf("Model #%d", id)
}

// ChatList is the user's conversations. Selection 0 is the "new chat" state.
type ChatList struct {
	list snapshotList[protocol.Chat]

	mu        sync.Mutex
	preparing bool
}

func NewChatList() *ChatList {
	return &ChatList{list: snapshotList[protocol.Chat]{
		idOf: func(c protocol.Chat) int64 { return c.ID },
	}}
}

// Apply replaces the list with a snapshot and reports whether the selected
// chat changed. While a new chat is being prepared, selection stays at 0.
func (c *ChatList) Apply(chats []protocol.Chat) bool {
	c.mu.Lock()
	keep := c.preparing
	c.mu.Unlock()
	return c.list.apply(chats, keep)
}

func (c *ChatList) Items() []protocol.Chat {
	return c.list.snapshot()
}

func (c *ChatList) Len() int {
	return c.list.len()
}

func (c *ChatList) SelectedID() int64 {
	return c.list.selectedID()
}

func (c *ChatList) Selected() (protocol.Chat, bool) {
	return c.list.find(c.list.selectedID())
}

func (c *ChatList) Select(id int64) error {
	if err := c.list.selectID(id); err != nil {
		return fmt.Errorf("select chat: %w", err)
	}
	c.mu.Lock()
	c.preparing = false
	c.mu.Unlock()
	return nil
}

// Adopt selects a chat the server just created, before it shows up in a
// snapshot.
func (c *ChatList) Adopt(chat protocol.Chat) {
	c.list.mu.Lock()
	if c.list.indexLocked(chat.ID) < 0 {
		c.list.items = append([]protocol.Chat{chat}, c.list.items...)
	}
	c.list.selected = chat.ID
	c.list.mu.Unlock()

	c.mu.Lock()
	c.preparing = false
	c.mu.Unlock()
}

// PrepareNew enters the "new chat" state; the chat is created on first send.
func (c *ChatList) PrepareNew() {
	c.list.mu.Lock()
	c.list.selected = 0
	c.list.mu.Unlock()

	c.mu.Lock()
	c.preparing = true
	c.mu.Unlock()
}

// PreparingNew reports whether the "new chat" state is active.
func (c *ChatList) PreparingNew() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preparing
}

// Title returns the chat's title or a placeholder.
func (c *ChatList) Title(id int64) string {
	if id == 0 {
		return "New chat"
	}
	if chat, ok := c.list.find(id); ok && chat.Title != "" {
		return chat.Title
	}
	return "Untitled Chat"
}
