// ABOUTME: Renderer abstraction with a glamour-backed implementation for terminal output
// ABOUTME: Prose goes through glamour; fenced code is handled separately by the store
package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
)

// Renderer turns markdown prose and code into terminal strings. Both methods
// must be pure: the same input always yields the same output.
type Renderer interface {
	Markdown(src string) string
	Highlight(code, language string) string
}

// TermRenderer renders with glamour and chroma.
type TermRenderer struct {
	mu        sync.Mutex
	glam      *glamour.TermRenderer
	width     int
	codeStyle string
}

// NewTermRenderer builds a renderer for the given wrap width and glamour
// style ("dark", "light", "notty", ...). If glamour cannot be initialized,
// prose falls back to plain word-wrapped text.
func NewTermRenderer(width int, style string) *TermRenderer {
	if width <= 0 {
		width = 80
	}
	if style == "" {
		style = "dark"
	}
	codeStyle := "monokai"
	if style == "light" {
		codeStyle = "github"
	}

	glam, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		glam = nil
	}
	return &TermRenderer{glam: glam, width: width, codeStyle: codeStyle}
}

func (r *TermRenderer) Markdown(src string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.glam == nil {
		return wordwrap.String(src, r.width)
	}
	out, err := r.glam.Render(src)
	if err != nil {
		return wordwrap.String(src, r.width)
	}
	return strings.Trim(out, "\n")
}

func (r *TermRenderer) Highlight(code, language string) string {
	return HighlightCode(code, language, r.codeStyle)
}

// Width returns the wrap width.
func (r *TermRenderer) Width() int {
	return r.width
}

// renderText renders a markdown source. With highlight set, fenced code goes
// through the renderer's highlighter; otherwise it is framed as plain text.
func renderText(r Renderer, src string, highlight bool) string {
	var parts []string
	for _, seg := range Segments(src) {
		if seg.Code {
			code := seg.Text
			if highlight {
				code = r.Highlight(seg.Text, seg.Language)
			}
			parts = append(parts, codeBox(code, seg.Language))
			continue
		}
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		parts = append(parts, r.Markdown(seg.Text))
	}
	return strings.Join(parts, "\n")
}
