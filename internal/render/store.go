// ABOUTME: Render node store keyed by message id, preserving display order
// ABOUTME: Guarantees one node per id and a single, final highlighting pass
package render

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNodeNotFound     = errors.New("render node not found")
	ErrAlreadyFinalized = errors.New("render node already finalized")
	ErrAlreadyRenamed   = errors.New("render node already renamed")
	ErrIDInUse          = errors.New("render node id already in use")
)

type Store struct {
	mu       sync.RWMutex
	renderer Renderer
	nodes    map[string]*Node
	order    []string
	renamed  map[string]bool
	revision uint64
	now      func() time.Time

	collapseDefault bool
}

func NewStore(r Renderer) *Store {
	return &Store{
		renderer: r,
		nodes:    make(map[string]*Node),
		renamed:  make(map[string]bool),
		now:      time.Now,
	}
}

// GetOrCreate returns the node for id, creating it if absent. The second
// result reports whether the node was created by this call.
func (s *Store) GetOrCreate(id string, chatID int64, role string, modelID int64) (*Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.nodes[id]; ok {
		return n, false
	}

	n := &Node{
		ID:      id,
		ChatID:  chatID,
		Role:    role,
		ModelID: modelID,
		Kind:    KindMessage,
		Footer: Footer{
			Timestamp: s.now(),
			Copyable:  role == "assistant",
		},
	}
	s.insert(n)
	return n, true
}

// Get returns the node for id or nil.
func (s *Store) Get(id string) *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[id]
}

// Finalized reports whether id exists and has been finalized.
func (s *Store) Finalized(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	return ok && n.Finalized
}

// Remove deletes exactly the node with id and reports whether it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return false
	}
	delete(s.nodes, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.revision++
	return true
}

// Rename moves a placeholder node to its server id. A node can be renamed
// at most once.
func (s *Store) Rename(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[from]
	if !ok {
		return fmt.Errorf("rename %s: %w", from, ErrNodeNotFound)
	}
	if s.renamed[from] {
		return fmt.Errorf("rename %s: %w", from, ErrAlreadyRenamed)
	}
	if _, taken := s.nodes[to]; taken {
		return fmt.Errorf("rename %s to %s: %w", from, to, ErrIDInUse)
	}

	delete(s.nodes, from)
	n.ID = to
	s.nodes[to] = n
	s.renamed[to] = true
	for i, oid := range s.order {
		if oid == from {
			s.order[i] = to
			break
		}
	}
	s.revision++
	return nil
}

// Append adds a notice or error entry at the end of the list.
func (s *Store) Append(kind Kind, text string) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := &Node{
		ID:        "notice-" + uuid.NewString(),
		Kind:      kind,
		Role:      "system",
		Content:   text,
		Raw:       text,
		Finalized: true,
		Footer:    Footer{Timestamp: s.now()},
	}
	s.insert(n)
	return n
}

// Nodes returns copies of all nodes in display order.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id].clone())
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Clear removes every node.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*Node)
	s.renamed = make(map[string]bool)
	s.order = nil
	s.revision++
}

// Revision increases on every mutation so views can tell when to redraw.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// StampModel sets the footer's model label if none is set yet.
func (s *Store) StampModel(id, label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok || n.Footer.ModelLabel != "" || label == "" {
		return false
	}
	n.Footer.ModelLabel = label
	s.revision++
	return true
}

// Confirm records the server's confirmation of a message: the raw markdown
// used for copy and the token count.
func (s *Store) Confirm(id, raw string, tokens int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("confirm %s: %w", id, ErrNodeNotFound)
	}
	n.Raw = raw
	n.Footer.Tokens = tokens
	s.revision++
	return nil
}

// Render re-renders an open node from its full buffers without highlighting.
func (s *Store) Render(id string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.open(id)
	if err != nil {
		return fmt.Errorf("render %s: %w", id, err)
	}
	s.apply(n, doc, false)
	return nil
}

// Finalize renders the node one last time with the highlighting pass and
// marks it finalized. No further Render or Finalize is accepted.
func (s *Store) Finalize(id string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.open(id)
	if err != nil {
		return fmt.Errorf("finalize %s: %w", id, err)
	}
	s.apply(n, doc, true)
	n.Finalized = true
	return nil
}

// ToggleReasoning collapses or expands a node's reasoning block.
func (s *Store) ToggleReasoning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok || n.Reasoning == nil {
		return false
	}
	n.Reasoning.Collapsed = !n.Reasoning.Collapsed
	s.revision++
	return true
}

// SetReasoningCollapsed applies the default fold state to new reasoning blocks.
func (s *Store) SetReasoningCollapsed(collapsed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collapseDefault = collapsed
}

func (s *Store) open(id string) (*Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	if n.Finalized {
		return nil, ErrAlreadyFinalized
	}
	return n, nil
}

func (s *Store) apply(n *Node, doc Document, highlight bool) {
	n.Content = renderText(s.renderer, doc.Visible, highlight)
	if doc.HasReasoning && strings.TrimSpace(doc.Reasoning) != "" {
		if n.Reasoning == nil {
			n.Reasoning = &ReasoningBlock{Collapsed: s.collapseDefault}
		}
		n.Reasoning.Content = renderText(s.renderer, doc.Reasoning, highlight)
	}
	s.revision++
}

func (s *Store) insert(n *Node) {
	s.nodes[n.ID] = n
	s.order = append(s.order, n.ID)
	s.revision++
}
