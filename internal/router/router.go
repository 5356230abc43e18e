// ABOUTME: Message router decoding gateway frames and dispatching them by event type
// ABOUTME: Clears the thinking indicator for every routed event except status
package router

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ramborogers/cyberai-tui/internal/logger"
	"github.com/ramborogers/cyberai-tui/internal/protocol"
)

// Handlers receives decoded events. Payloads are guaranteed non-nil.
type Handlers interface {
	OnSystem(p *protocol.ContentPayload) error
	OnStatus(p *protocol.StatusPayload) error
	OnError(p *protocol.ErrorPayload) error
	OnUserMessage(m *protocol.Message) error
	OnAssistantMessage(m *protocol.Message) error
	OnChunk(c *protocol.ChunkPayload) error
	OnModelList(models []protocol.Model) error
	OnChatList(chats []protocol.Chat) error
	OnRemove(p *protocol.RemovePayload) error
}

// Indicator is the "assistant is thinking" display state.
type Indicator interface {
	SetThinking(on bool)
}

// Stats counts frames by how the router handled them.
type Stats struct {
	Routed    map[string]int
	Malformed int
	Unknown   int
}

type Router struct {
	handlers  Handlers
	indicator Indicator
	log       logger.Scoped

	mu    sync.Mutex
	stats Stats
}

func New(h Handlers, ind Indicator) *Router {
	return &Router{
		handlers:  h,
		indicator: ind,
		log:       logger.Scope("router"),
		stats:     Stats{Routed: make(map[string]int)},
	}
}

// Dispatch decodes and routes one frame. Malformed frames return an error
// wrapping protocol.ErrMalformedFrame and reach no handler.
func (r *Router) Dispatch(frame []byte) error {
	env, err := protocol.Decode(frame)
	if err != nil {
		r.malformed(err, len(frame))
		return err
	}
	if err := env.Validate(); err != nil {
		r.malformed(err, len(frame))
		return err
	}

	if !protocol.Known(env.Type) {
		r.mu.Lock()
		r.stats.Unknown++
		r.mu.Unlock()
		r.log.Info("ignoring unknown event type %q", env.Type)
		return nil
	}

	r.mu.Lock()
	r.stats.Routed[env.Type]++
	r.mu.Unlock()

	if env.Type == protocol.TypeStatus {
		r.indicator.SetThinking(!IsCompletionStatus(env.StatusPayload.Message))
	} else {
		r.indicator.SetThinking(false)
	}

	if err := r.route(env); err != nil {
		return fmt.Errorf("handle %s: %w", env.Type, err)
	}
	return nil
}

func (r *Router) route(env *protocol.Envelope) error {
	h := r.handlers
	switch env.Type {
	case protocol.TypeSystem:
		return h.OnSystem(env.ContentPayload)
	case protocol.TypeStatus:
		return h.OnStatus(env.StatusPayload)
	case protocol.TypeError:
		return h.OnError(env.ErrorPayload)
	case protocol.TypeUserMessage:
		return h.OnUserMessage(env.MessagePayload)
	case protocol.TypeAssistantMessage:
		return h.OnAssistantMessage(env.MessagePayload)
	case protocol.TypeAssistantChunk:
		return h.OnChunk(env.ChunkPayload)
	case protocol.TypeModelList:
		return h.OnModelList(env.ModelListPayload)
	case protocol.TypeChatList:
		return h.OnChatList(env.ChatListPayload)
	case protocol.TypeRemoveMessage:
		return h.OnRemove(env.RemovePayload)
	}
	return nil
}

func (r *Router) malformed(err error, size int) {
	r.mu.Lock()
	r.stats.Malformed++
	r.mu.Unlock()
	r.log.Warn("dropping frame (%d bytes): %v", size, err)
}

// Stats returns a copy of the dispatch counters.
func (r *Router) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	routed := make(map[string]int, len(r.stats.Routed))
	for k, v := range r.stats.Routed {
		routed[k] = v
	}
	return Stats{Routed: routed, Malformed: r.stats.Malformed, Unknown: r.stats.Unknown}
}

// IsCompletionStatus reports whether a status message says generation ended.
func IsCompletionStatus(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "complete") || strings.Contains(m, "finished")
}
