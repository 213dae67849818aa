package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/toolbar/pkg/model"
	"github.com/vanderheijden86/toolbar/pkg/toolbar"
)

const (
	headerHeight  = 1
	proxyMarker   = " ▾"
	emptyGlyph    = "·"
	separatorRune = "│"
)

// Layout draws item cells. It is also the toolbar's Normalizer: every time
// the top-level items change it records the tallest cell content so all
// top-level cells can be drawn at one height.
type Layout struct {
	theme    Theme
	maxLabel int

	withLabels int
	bare       int
	normalized int
}

// NewLayout creates a layout. maxLabel <= 0 leaves labels untruncated.
func NewLayout(theme Theme, maxLabel int) *Layout {
	return &Layout{theme: theme, maxLabel: maxLabel}
}

// Normalize implements toolbar.Normalizer.
func (l *Layout) Normalize(items []*toolbar.Item) {
	l.withLabels, l.bare = 0, 0
	for _, it := range items {
		if it.Kind == model.KindSeparator {
			continue
		}
		l.withLabels = max(l.withLabels, len(l.content(it, true)))
		l.bare = max(l.bare, len(l.content(it, false)))
	}
	l.normalized++
}

// Height returns the normalised content height of top-level cells.
func (l *Layout) Height(labels bool) int {
	if labels {
		return max(l.withLabels, 1)
	}
	return max(l.bare, 1)
}

// Normalizations reports how many times Normalize has run.
func (l *Layout) Normalizations() int {
	return l.normalized
}

// content returns the text lines drawn inside a cell.
func (l *Layout) content(it *toolbar.Item, showLabel bool) []string {
	d := it.Display()
	var lines []string
	if g := iconGlyph(d.Icon); g != "" {
		lines = append(lines, g)
	}
	if showLabel && d.Label != "" {
		label := d.Label
		if l.maxLabel > 0 {
			label = truncateRunesHelper(label, l.maxLabel, "…")
		}
		lines = append(lines, label)
	}
	if len(lines) == 0 {
		lines = append(lines, emptyGlyph)
	}
	if it.Kind == model.KindExpanderProxy {
		lines[len(lines)-1] += l.theme.Proxy.Render(proxyMarker)
	}
	return lines
}

type cellState struct {
	focused bool
	pressed bool
}

func (l *Layout) renderCell(it *toolbar.Item, showLabel bool, height int, st cellState) string {
	if it.Kind == model.KindSeparator {
		rows := make([]string, height+2)
		for i := range rows {
			rows[i] = separatorRune
		}
		return l.theme.Separator.Render(strings.Join(rows, "\n"))
	}

	style := l.theme.Item
	if it.Active() {
		style = l.theme.Active
	}
	if st.focused {
		style = style.Inherit(l.theme.Focused)
	}
	if st.pressed {
		style = style.Inherit(l.theme.Pressed)
	}
	return style.Height(height).Render(strings.Join(l.content(it, showLabel), "\n"))
}

// cell is one drawn item and the screen rectangle it occupies.
type cell struct {
	item *toolbar.Item
	x, y int
	w, h int
	view string
}

func (c cell) contains(x, y int) bool {
	return x >= c.x && x < c.x+c.w && y >= c.y && y < c.y+c.h
}

// row is a horizontal run of cells starting at column x.
type row struct {
	x, y  int
	cells []cell
}

func (r row) height() int {
	h := 0
	for _, c := range r.cells {
		h = max(h, c.h)
	}
	return h
}

func (r row) render() string {
	views := make([]string, len(r.cells))
	for i, c := range r.cells {
		views[i] = c.view
	}
	out := lipgloss.JoinHorizontal(lipgloss.Top, views...)
	if r.x == 0 {
		return out
	}
	pad := strings.Repeat(" ", r.x)
	lines := strings.Split(out, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

// arrange lays out the top-level bar followed by one row per open
// expander, each starting under its proxy.
func (l *Layout) arrange(tb *toolbar.Toolbar, state func(*toolbar.Item) cellState) []row {
	labels := tb.Labels()
	height := l.Height(labels)

	bar := row{x: 0, y: headerHeight}
	x := 0
	anchors := make(map[string]int)
	for _, it := range tb.Items() {
		view := l.renderCell(it, labels, height, state(it))
		w, h := lipgloss.Width(view), lipgloss.Height(view)
		bar.cells = append(bar.cells, cell{item: it, x: x, y: bar.y, w: w, h: h, view: view})
		if it.Kind == model.KindExpanderProxy {
			anchors[it.Group] = x
		}
		x += w
	}
	rows := []row{bar}

	y := bar.y + bar.height()
	for _, exp := range tb.Expanders() {
		anchor, ok := anchors[exp.Group]
		if !exp.Visible() || !ok || len(exp.Items()) == 0 {
			continue
		}
		r := row{x: anchor, y: y}
		rowHeight := 1
		for _, it := range exp.Items() {
			rowHeight = max(rowHeight, len(l.content(it, true)))
		}
		cx := anchor
		for _, it := range exp.Items() {
			view := l.renderCell(it, true, rowHeight, state(it))
			w, h := lipgloss.Width(view), lipgloss.Height(view)
			r.cells = append(r.cells, cell{item: it, x: cx, y: y, w: w, h: h, view: view})
			cx += w
		}
		rows = append(rows, r)
		y += r.height()
	}
	return rows
}
