// ABOUTME: Fenced code block parsing and chroma syntax highlighting for finalized messages
// ABOUTME: Streaming renders leave code plain; the highlight pass runs once at finalize
package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// Segment is a run of markdown prose or a fenced code block.
type Segment struct {
	Code     bool
	Language string
	Text     string
}

// Segments splits markdown into prose and fenced code runs. An unclosed fence
// at the end (common while streaming) is treated as code.
func Segments(text string) []Segment {
	var (
		segs     []Segment
		lines    []string
		inCode   bool
		language string
	)

	flush := func(code bool) {
		if len(lines) == 0 && !code {
			return
		}
		segs = append(segs, Segment{Code: code, Language: language, Text: strings.Join(lines, "\n")})
		lines = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inCode {
				flush(true)
				language = ""
				inCode = false
			} else {
				flush(false)
				language = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "```"))
				inCode = true
			}
			continue
		}
		lines = append(lines, line)
	}
	flush(inCode)
	return segs
}

// HighlightCode applies chroma terminal highlighting. Unknown languages are
// detected from content; any failure returns the code unchanged.
func HighlightCode(code, language, style string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	s := chromaStyles.Get(style)
	if s == nil {
		s = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, s, iterator); err != nil {
		return code
	}
	return buf.String()
}

var (
	codeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	codeLangStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

// codeBox frames a (possibly highlighted) code block with its language label.
func codeBox(code, language string) string {
	body := strings.TrimRight(code, "\n")
	if language != "" {
		body = codeLangStyle.Render(language) + "\n" + body
	}
	return codeBoxStyle.Render(body)
}
