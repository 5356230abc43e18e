// ABOUTME: Per-operation request sequencing so stale REST responses are discarded
// ABOUTME: Each new request supersedes every earlier one for the same operation
package client

import "sync"

// Operations guarded by the sequencer.
const (
	OpModels = "models"
	OpChats  = "chats"
	OpLoad   = "load"
	OpSend   = "send"
)

type Sequencer struct {
	mu   sync.Mutex
	last map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{last: make(map[string]uint64)}
}

// Next issues the sequence number for a new request of op.
func (s *Sequencer) Next(op string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[op]++
	return s.last[op]
}

// IsCurrent reports whether seq is the latest request issued for op.
func (s *Sequencer) IsCurrent(op string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[op] == seq
}

// Invalidate makes every in-flight request for op stale.
func (s *Sequencer) Invalidate(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[op]++
}
