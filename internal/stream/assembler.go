// ABOUTME: Chunk assembler turning assistant_chunk events into render node updates
// ABOUTME: Drives each message through Absent -> Open -> Finalized and never reopens
package stream

import (
	"fmt"
	"sync"

	"github.com/ramborogers/cyberai-tui/internal/logger"
	"github.com/ramborogers/cyberai-tui/internal/protocol"
	"github.com/ramborogers/cyberai-tui/internal/render"
)

// NodeStore is the subset of the render store the assembler mutates.
type NodeStore interface {
	GetOrCreate(id string, chatID int64, role string, modelID int64) (*render.Node, bool)
	Finalized(id string) bool
	StampModel(id, label string) bool
	Render(id string, doc render.Document) error
	Finalize(id string, doc render.Document) error
}

// ModelNamer resolves a model id to the label shown in a message footer.
type ModelNamer interface {
	ModelName(id int64) string
}

// Outcome describes what Apply or Complete did with an event.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeFinalized
	OutcomeReplayed
	OutcomeUnchanged
	OutcomeIgnoredChat
	OutcomeLateChunk
	OutcomeRemoved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeFinalized:
		return "finalized"
	case OutcomeReplayed:
		return "replayed"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeIgnoredChat:
		return "ignored-chat"
	case OutcomeLateChunk:
		return "late-chunk"
	case OutcomeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Mutated reports whether render state changed.
func (o Outcome) Mutated() bool {
	return o == OutcomeApplied || o == OutcomeFinalized || o == OutcomeReplayed
}

type Assembler struct {
	mu     sync.Mutex
	store  NodeStore
	filter ChatFilter
	models ModelNamer
	states map[string]*MessageState
	log    logger.Scoped
}

func NewAssembler(store NodeStore, filter ChatFilter, models ModelNamer) *Assembler {
	return &Assembler{
		store:  store,
		filter: filter,
		models: models,
		states: make(map[string]*MessageState),
		log:    logger.Scope("assembler"),
	}
}

// Apply feeds one chunk. Chunks for other chats and chunks for finalized
// messages are dropped without touching render state.
func (a *Assembler) Apply(chunk *protocol.ChunkPayload) (Outcome, error) {
	if chunk == nil || chunk.MessageID == nil {
		return OutcomeUnchanged, fmt.Errorf("%w: chunk without message id", protocol.ErrMalformedFrame)
	}
	id := protocol.FormatID(*chunk.MessageID)

	if !a.filter.IsRelevant(chunk.ChatID) {
		a.log.Debug("dropping chunk for message %s: chat %d is not active", id, chunk.ChatID)
		return OutcomeIgnoredChat, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.states[id]
	if ok && st.Closed() {
		a.log.Warn("late chunk for %s message %s ignored (%d bytes)", st.phase, id, len(chunk.Content))
		return OutcomeLateChunk, nil
	}
	if !ok {
		if a.store.Finalized(id) {
			a.log.Warn("chunk for already rendered message %s ignored", id)
			return OutcomeLateChunk, nil
		}
		st = newMessageState(id, chunk.ChatID)
		a.states[id] = st
		a.store.GetOrCreate(id, chunk.ChatID, protocol.RoleAssistant, protocol.Int64(chunk.ModelID))
		a.log.Debug("opened message %s in chat %d", id, chunk.ChatID)
	}

	st.chunks++
	a.stampModel(st, protocol.Int64(chunk.ModelID))
	st.split.Write(chunk.Content)

	if chunk.IsFinal {
		if err := a.finalize(st); err != nil {
			return OutcomeUnchanged, err
		}
		return OutcomeFinalized, nil
	}

	if err := a.store.Render(id, st.document()); err != nil {
		return OutcomeUnchanged, fmt.Errorf("render message %s: %w", id, err)
	}
	return OutcomeApplied, nil
}

// Complete handles the assistant_message confirmation. An open message is
// finalized from its buffers; a message never streamed is replayed whole.
func (a *Assembler) Complete(msg *protocol.Message) (Outcome, error) {
	if msg == nil {
		return OutcomeUnchanged, fmt.Errorf("%w: empty message", protocol.ErrMalformedFrame)
	}
	if !a.filter.IsRelevant(msg.ChatID) {
		a.log.Debug("dropping confirmation for message %d: chat %d is not active", msg.ID, msg.ChatID)
		return OutcomeIgnoredChat, nil
	}

	id := protocol.FormatID(msg.ID)

	a.mu.Lock()
	st, ok := a.states[id]
	if ok {
		defer a.mu.Unlock()
		switch st.phase {
		case PhaseRemoved:
			a.log.Debug("confirmation for removed message %s ignored", id)
			return OutcomeRemoved, nil
		case PhaseFinalized:
			return OutcomeUnchanged, nil
		}
		a.log.Info("message %s confirmed without terminal chunk, finalizing", id)
		a.stampModel(st, protocol.Int64(msg.ModelID))
		if err := a.finalize(st); err != nil {
			return OutcomeUnchanged, err
		}
		return OutcomeFinalized, nil
	}
	a.mu.Unlock()

	if a.store.Finalized(id) {
		return OutcomeUnchanged, nil
	}
	// the event type names the sender even when the payload omits it
	replay := *msg
	replay.Role = protocol.RoleAssistant
	if err := a.Replay(replay); err != nil {
		return OutcomeUnchanged, err
	}
	return OutcomeReplayed, nil
}

// Replay renders a persisted message as finalized in one pass. Assistant
// content is split on reasoning markers; other roles render verbatim.
func (a *Assembler) Replay(msg protocol.Message) error {
	id := protocol.FormatID(msg.ID)
	if a.store.Finalized(id) {
		return nil
	}

	modelID := protocol.Int64(msg.ModelID)
	a.store.GetOrCreate(id, msg.ChatID, msg.Role, modelID)

	doc := render.Document{Visible: msg.Content}
	if msg.Role == protocol.RoleAssistant {
		doc.Visible, doc.Reasoning, doc.HasReasoning = Split(msg.Content)
		if modelID != 0 {
			a.store.StampModel(id, a.models.ModelName(modelID))
		}
	}
	if err := a.store.Finalize(id, doc); err != nil {
		return fmt.Errorf("replay message %s: %w", id, err)
	}

	if msg.Role == protocol.RoleAssistant {
		a.mu.Lock()
		st := newMessageState(id, msg.ChatID)
		st.ModelID = modelID
		st.modelStamped = modelID != 0
		st.phase = PhaseFinalized
		a.states[id] = st
		a.mu.Unlock()
	}
	return nil
}

// Remove leaves a tombstone for a message the server deleted, so chunks
// still in flight for it are dropped instead of opening a new node.
func (a *Assembler) Remove(id string, chatID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	st, ok := a.states[id]
	if !ok {
		st = newMessageState(id, chatID)
		a.states[id] = st
	}
	st.split.Reset()
	st.phase = PhaseRemoved
}

// Reset drops all message state. Used when the active chat changes.
func (a *Assembler) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.states = make(map[string]*MessageState)
}

// Snapshot returns a copy of a message's state.
func (a *Assembler) Snapshot(id string) (Snapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	st, ok := a.states[id]
	if !ok {
		return Snapshot{}, false
	}
	return st.snapshot(), true
}

// OpenCount returns how many messages are still streaming.
func (a *Assembler) OpenCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, st := range a.states {
		if !st.Closed() {
			n++
		}
	}
	return n
}

func (a *Assembler) stampModel(st *MessageState, modelID int64) {
	if st.modelStamped || modelID == 0 {
		return
	}
	st.setModel(modelID)
	if a.store.StampModel(st.ID, a.models.ModelName(st.ModelID)) {
		a.log.Debug("stamped message %s with model %d", st.ID, st.ModelID)
	}
	st.modelStamped = true
}

// finalize must be called with a.mu held.
func (a *Assembler) finalize(st *MessageState) error {
	if st.split.Flush() {
		a.log.Warn("message %s finished inside a reasoning span, closing it", st.ID)
	}
	if err := a.store.Finalize(st.ID, st.document()); err != nil {
		return fmt.Errorf("finalize message %s: %w", st.ID, err)
	}
	st.release()
	a.log.Debug("finalized message %s after %d chunks", st.ID, st.chunks)
	return nil
}
