package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# tb

| Key | Action |
| --- | --- |
| ← → / h l / tab | Move focus |
| ↓ / j | Open the focused group's expander |
| ↑ / k | Close the expander, back to its proxy |
| enter / space | Click the focused item |
| mouse click | Click an item, or close expanders when outside |
| esc | Close every expander |
| / | Select by id, index, _first or _last |
| g / G | Focus the first or last item |
| L | Show or hide labels |
| y | Copy the focused item's id |
| ? | Toggle this help |
| q | Quit |

Buttons in a group are exclusive: clicking one releases the others.
A group's proxy (marked ▾) opens its expander and shows the
icon and label of the group's active member.
`

// renderHelp renders the key reference for the given terminal width,
// falling back to the raw markdown when glamour cannot render.
func renderHelp(width int) string {
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
