// ABOUTME: Active-chat filter that scopes streaming events to the open conversation
// ABOUTME: Zero means no chat is open yet (new chat not created)
package stream

import "sync"

// ChatFilter decides whether an event for chatID belongs to the open view.
type ChatFilter interface {
	IsRelevant(chatID int64) bool
}

// ActiveChat tracks the currently displayed chat id.
type ActiveChat struct {
	mu sync.RWMutex
	id int64
}

func NewActiveChat(id int64) *ActiveChat {
	return &ActiveChat{id: id}
}

func (a *ActiveChat) IsRelevant(chatID int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return chatID == a.id
}

// Set switches the active chat and reports whether it changed.
func (a *ActiveChat) Set(id int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	changed := a.id != id
	a.id = id
	return changed
}

func (a *ActiveChat) Current() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.id
}
