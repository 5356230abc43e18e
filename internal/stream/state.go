// ABOUTME: Per-message render state tracked by the chunk assembler
// ABOUTME: Owns the splitter buffers until finalize releases them
package stream

import "github.com/ramborogers/cyberai-tui/internal/render"

// Phase is where a message sits in its lifecycle. Absent messages have no state.
type Phase int

const (
	PhaseOpen Phase = iota
	PhaseFinalized
	// PhaseRemoved is a tombstone left after the server deletes a message.
	PhaseRemoved
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseFinalized:
		return "finalized"
	case PhaseRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// MessageState is the assembler's bookkeeping for one message id.
type MessageState struct {
	ID      string
	ChatID  int64
	ModelID int64

	split        Splitter
	modelStamped bool
	phase        Phase
	chunks       int
}

func newMessageState(id string, chatID int64) *MessageState {
	return &MessageState{ID: id, ChatID: chatID, phase: PhaseOpen}
}

// Finalized reports whether the message has been closed.
func (m *MessageState) Finalized() bool {
	return m.phase == PhaseFinalized
}

// Closed reports whether the message can no longer take chunks.
func (m *MessageState) Closed() bool {
	return m.phase != PhaseOpen
}

func (m *MessageState) document() render.Document {
	reasoning, has := m.split.Reasoning()
	return render.Document{
		Visible:      m.split.Visible(),
		Reasoning:    reasoning,
		HasReasoning: has,
	}
}

// setModel records the model once; later differing ids are ignored.
func (m *MessageState) setModel(id int64) bool {
	if id == 0 || m.ModelID != 0 {
		return false
	}
	m.ModelID = id
	return true
}

func (m *MessageState) release() {
	m.split.Reset()
	m.phase = PhaseFinalized
}

// Snapshot is a read-only view of a message's state for inspection.
type Snapshot struct {
	ID           string
	ChatID       int64
	ModelID      int64
	Phase        Phase
	Visible      string
	Reasoning    string
	HasReasoning bool
	InReasoning  bool
	Chunks       int
}

func (m *MessageState) snapshot() Snapshot {
	reasoning, has := m.split.Reasoning()
	return Snapshot{
		ID:           m.ID,
		ChatID:       m.ChatID,
		ModelID:      m.ModelID,
		Phase:        m.phase,
		Visible:      m.split.Visible(),
		Reasoning:    reasoning,
		HasReasoning: has,
		InReasoning:  m.split.InReasoning(),
		Chunks:       m.chunks,
	}
}
