// ABOUTME: Render node types: rendered content, collapsible reasoning block, and footer
// ABOUTME: A node is what the chat view draws for one message or notice
package render

import "time"

type Kind int

const (
	KindMessage Kind = iota
	KindNotice
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindNotice:
		return "notice"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Document is the source a node is rendered from.
type Document struct {
	Visible      string
	Reasoning    string
	HasReasoning bool
}

// ReasoningBlock is created the first time a message produces reasoning text.
type ReasoningBlock struct {
	Content   string
	Collapsed bool
}

type Footer struct {
	Timestamp  time.Time
	ModelLabel string
	Tokens     int
	// Copyable marks assistant nodes that offer copy-as-markdown.
	Copyable bool
}

type Node struct {
	ID      string
	ChatID  int64
	Role    string
	ModelID int64
	Kind    Kind

	Content   string
	Reasoning *ReasoningBlock
	Footer    Footer

	// Raw is the unrendered markdown from the server confirmation, used for copy.
	Raw       string
	Finalized bool
}

// HasReasoning reports whether the reasoning block exists.
func (n *Node) HasReasoning() bool {
	return n.Reasoning != nil
}

func (n *Node) clone() Node {
	c := *n
	if n.Reasoning != nil {
		r := *n.Reasoning
		c.Reasoning = &r
	}
	return c
}
