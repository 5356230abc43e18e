// ABOUTME: Boundary-agnostic splitter routing chunk text into visible and reasoning buffers
// ABOUTME: Holds back a partial marker at the end of a chunk until the next chunk resolves it
package stream

import (
	"strings"

	"github.com/ramborogers/cyberai-tui/internal/protocol"
)

// Splitter accumulates one message's text, separating the reasoning span
// delimited by <think> and </think> from the visible answer.
//
// Feeding text in any number of pieces produces the same buffers as feeding
// the concatenation at once, provided Flush is called after the last piece.
type Splitter struct {
	visible     strings.Builder
	reasoning   *strings.Builder
	inReasoning bool
	// pending is a suffix of the input that is a proper prefix of the marker
	// currently being searched for. It is at most len(marker)-1 bytes.
	pending string
}

// Write consumes the next piece of text.
func (s *Splitter) Write(text string) {
	buf := s.pending + text
	s.pending = ""

	for buf != "" {
		marker := s.marker()
		if idx := strings.Index(buf, marker); idx >= 0 {
			s.appendCurrent(buf[:idx])
			s.toggle()
			buf = buf[idx+len(marker):]
			continue
		}

		hold := partialMarkerSuffix(buf, marker)
		s.appendCurrent(buf[:len(buf)-hold])
		s.pending = buf[len(buf)-hold:]
		return
	}
}

// Flush releases any held-back partial marker as literal text. It reports
// whether the splitter was still inside a reasoning span.
func (s *Splitter) Flush() (unclosed bool) {
	if s.pending != "" {
		s.appendCurrent(s.pending)
		s.pending = ""
	}
	unclosed = s.inReasoning
	s.inReasoning = false
	return unclosed
}

// Visible returns the text outside reasoning spans resolved so far.
func (s *Splitter) Visible() string {
	return s.visible.String()
}

// Reasoning returns the reasoning text and whether a span was ever entered.
func (s *Splitter) Reasoning() (string, bool) {
	if s.reasoning == nil {
		return "", false
	}
	return s.reasoning.String(), true
}

// InReasoning reports whether the last resolved marker opened a span.
func (s *Splitter) InReasoning() bool {
	return s.inReasoning
}

// Reset drops both buffers and the span state.
func (s *Splitter) Reset() {
	*s = Splitter{}
}

func (s *Splitter) marker() string {
	if s.inReasoning {
		return protocol.ReasoningEnd
	}
	return protocol.ReasoningStart
}

func (s *Splitter) toggle() {
	s.inReasoning = !s.inReasoning
	if s.inReasoning && s.reasoning == nil {
		s.reasoning = &strings.Builder{}
	}
}

func (s *Splitter) appendCurrent(text string) {
	if text == "" {
		return
	}
	if s.inReasoning {
		s.reasoning.WriteString(text)
		return
	}
	s.visible.WriteString(text)
}

// partialMarkerSuffix returns the length of the longest suffix of buf that is
// a proper prefix of marker.
func partialMarkerSuffix(buf, marker string) int {
	n := len(marker) - 1
	if n > len(buf) {
		n = len(buf)
	}
	for ; n > 0; n-- {
		if strings.HasSuffix(buf, marker[:n]) {
			return n
		}
	}
	return 0
}

// Split runs the whole text through a fresh splitter.
func Split(text string) (visible, reasoning string, hasReasoning bool) {
	var s Splitter
	s.Write(text)
	s.Flush()
	reasoning, hasReasoning = s.Reasoning()
	return s.Visible(), reasoning, hasReasoning
}
