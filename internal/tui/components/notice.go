// ABOUTME: Notice widget for rendering system notices and inline errors in the chat view
// ABOUTME: Wraps plain text with reflow so long server messages stay inside the pane
package components

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/ramborogers/cyberai-tui/internal/render"
	"github.com/ramborogers/cyberai-tui/internal/tui/theme"
)

// FormatNotice renders a notice or error node.
func FormatNotice(n render.Node, th theme.Theme, width int) string {
	var sb strings.Builder

	icon := "ℹ️"
	style := th.DimStyle()
	if n.Kind == render.KindError {
		icon = "❌"
		style = th.ErrorStyle()
	}

	timestamp := th.DimStyle().Render(n.Footer.Timestamp.Format("15:04"))
	sb.WriteString(fmt.Sprintf("%s %s\n", icon, timestamp))

	if width > 4 {
		sb.WriteString(style.Render(wordwrap.String(n.Content, width-4)))
	} else {
		sb.WriteString(style.Render(n.Content))
	}
	sb.WriteString("\n")
	return sb.String()
}
