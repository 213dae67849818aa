// Package export renders toolbar snapshots to static images.
package export

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/toolbar/pkg/metrics"
	"github.com/vanderheijden86/toolbar/pkg/model"
	"github.com/vanderheijden86/toolbar/pkg/toolbar"
)

// SnapshotOptions controls snapshot export.
type SnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg", "png" or "mermaid" (case-insensitive)
	Title  string // Rendered in the header
}

// SaveSnapshot renders snap as an SVG or PNG image: the top-level bar, and
// below each proxy its expander's items whether or not it is open. The
// mermaid format writes the same structure as a flowchart definition.
func SaveSnapshot(snap toolbar.Snapshot, opts SnapshotOptions) error {
	defer metrics.Timer(metrics.SnapshotWrite)()

	format, path, err := resolveFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	opts.Path = path

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	if format == "mermaid" {
		return os.WriteFile(opts.Path, []byte(GenerateMermaid(snap, opts.Title)), 0o644)
	}

	layout := buildLayout(snap, opts.Title)

	switch format {
	case "svg":
		file, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		defer file.Close()
		return renderSVGToWriter(file, layout)
	case "png":
		return renderPNG(opts.Path, layout)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// SaveSnapshots writes the same snapshot to several paths concurrently.
func SaveSnapshots(ctx context.Context, snap toolbar.Snapshot, title string, paths ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, p := range paths {
		p := p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := SaveSnapshot(snap, SnapshotOptions{Path: p, Title: title}); err != nil {
				return fmt.Errorf("export %s: %w", p, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func resolveFormat(format, path string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		case ".mmd", ".mermaid":
			format = "mermaid"
		default:
			format = "svg"
			if path != "" && filepath.Ext(path) == "" {
				path += ".svg"
			}
		}
	}
	switch format {
	case "svg", "png", "mermaid":
	case "mmd":
		format = "mermaid"
	default:
		return "", "", fmt.Errorf("unsupported format %q (want svg, png or mermaid)", format)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	return format, path, nil
}

// --- layout computation ----------------------------------------------------

type layoutBox struct {
	Item      toolbar.ItemSnapshot
	X, Y      float64
	W, H      float64
	Separator bool
	Open      bool // proxy whose expander is open
}

type layoutResult struct {
	Boxes  []layoutBox
	Width  int
	Height int
	Header float64
	Title  string
	Counts string
	Labels bool
}

const (
	boxW         = 104.0
	boxHLabels   = 56.0
	boxHBare     = 36.0
	sepW         = 18.0
	gap          = 6.0
	padding      = 24.0
	headerHeight = 64.0
	rowGap       = 14.0
)

func buildLayout(snap toolbar.Snapshot, title string) layoutResult {
	boxH := boxHBare
	if snap.Labels {
		boxH = boxHLabels
	}

	expanders := make(map[string]toolbar.ExpanderSnapshot, len(snap.Expanders))
	for _, e := range snap.Expanders {
		expanders[e.Group] = e
	}

	var boxes []layoutBox
	x := padding
	y := padding + headerHeight
	maxX := x
	maxY := y + boxH
	for _, it := range snap.Items {
		if it.Kind == model.KindSeparator {
			boxes = append(boxes, layoutBox{Item: it, X: x, Y: y, W: sepW, H: boxH, Separator: true})
			x += sepW + gap
			continue
		}
		box := layoutBox{Item: it, X: x, Y: y, W: boxW, H: boxH}
		if it.Kind == model.KindExpanderProxy {
			exp := expanders[it.Group]
			box.Open = exp.Visible
			ey := y + boxH + rowGap
			ex := x
			for _, member := range exp.Items {
				boxes = append(boxes, layoutBox{Item: member, X: ex, Y: ey, W: boxW, H: boxHLabels})
				ex += boxW + gap
			}
			maxX = max(maxX, ex)
			maxY = max(maxY, ey+boxHLabels)
		}
		boxes = append(boxes, box)
		x += boxW + gap
	}
	maxX = max(maxX, x)

	if strings.TrimSpace(title) == "" {
		title = "Toolbar Snapshot"
	}
	active := 0
	items := 0
	for _, b := range boxes {
		if b.Separator {
			continue
		}
		items++
		if b.Item.Active {
			active++
		}
	}

	return layoutResult{
		Boxes:  boxes,
		Width:  max(int(maxX+padding), 480),
		Height: max(int(maxY+padding), 200),
		Header: headerHeight,
		Title:  title,
		Counts: fmt.Sprintf("items: %d  active: %d  expanders: %d", items, active, len(snap.Expanders)),
		Labels: snap.Labels,
	}
}

// --- rendering -------------------------------------------------------------

var (
	colorItem      = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorActive    = color.RGBA{0xe8, 0xdd, 0xff, 0xff}
	colorStroke    = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorAccent    = color.RGBA{0x6b, 0x47, 0xd9, 0xff}
	colorText      = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle    = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop  = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG  = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorExpanded  = color.RGBA{0xee, 0xee, 0xee, 0xff}
	colorSeparator = color.RGBA{0xaa, 0xaa, 0xaa, 0xff}
)

func boxFill(b layoutBox) color.RGBA {
	switch {
	case b.Item.Active:
		return colorActive
	case b.Item.Kind == model.KindExpanderButton:
		return colorExpanded
	default:
		return colorItem
	}
}

func boxStroke(b layoutBox) (color.RGBA, float64) {
	if b.Item.Active || b.Open {
		return colorAccent, 2
	}
	return colorStroke, 1
}

// boxLines returns the glyph and label drawn inside a box.
func boxLines(b layoutBox, labels bool) (string, string) {
	glyph := b.Item.Icon.Alt
	if glyph == "" && b.Item.Icon.Src != "" {
		base := filepath.Base(b.Item.Icon.Src)
		glyph = strings.TrimSuffix(base, filepath.Ext(base))
	}
	label := ""
	if labels || b.Item.Kind == model.KindExpanderButton {
		label = b.Item.Label
	}
	if glyph == "" && label == "" {
		glyph = b.Item.ID
	}
	if b.Item.Kind == model.KindExpanderProxy {
		if label != "" {
			label += " v"
		} else {
			glyph += " v"
		}
	}
	return truncate(glyph, 13), truncate(label, 13)
}

func renderPNG(path string, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(12, 12, float64(layout.Width)-24, layout.Header, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Title, 28, 36, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(layout.Counts, 28, 56, 0, 0.5)

	for _, b := range layout.Boxes {
		if b.Separator {
			dc.SetColor(colorSeparator)
			dc.SetLineWidth(2)
			dc.DrawLine(b.X+b.W/2, b.Y+4, b.X+b.W/2, b.Y+b.H-4)
			dc.Stroke()
			continue
		}
		drawBox(dc, b, layout.Labels)
	}

	return dc.SavePNG(path)
}

func drawBox(dc *gg.Context, b layoutBox, labels bool) {
	dc.SetColor(boxFill(b))
	dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, 8)
	dc.Fill()
	stroke, width := boxStroke(b)
	dc.SetColor(stroke)
	dc.SetLineWidth(width)
	dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, 8)
	dc.Stroke()

	glyph, label := boxLines(b, labels)
	dc.SetColor(colorText)
	if label == "" {
		dc.DrawStringAnchored(glyph, b.X+b.W/2, b.Y+b.H/2, 0.5, 0.5)
		return
	}
	dc.DrawStringAnchored(glyph, b.X+b.W/2, b.Y+b.H/3, 0.5, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(label, b.X+b.W/2, b.Y+2*b.H/3, 0.5, 0.5)
}

func renderSVGToWriter(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(12, 12, layout.Width-24, int(layout.Header), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(28, 40, layout.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(28, 60, layout.Counts, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))

	for _, b := range layout.Boxes {
		x, y, bw, bh := int(b.X), int(b.Y), int(b.W), int(b.H)
		if b.Separator {
			canvas.Line(x+bw/2, y+4, x+bw/2, y+bh-4, fmt.Sprintf("stroke:%s;stroke-width:2", css(colorSeparator)))
			continue
		}
		stroke, width := boxStroke(b)
		canvas.Gid(b.Item.ID)
		canvas.Roundrect(x, y, bw, bh, 8, 8,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%g", css(boxFill(b)), css(stroke), width))
		glyph, label := boxLines(b, layout.Labels)
		if label == "" {
			canvas.Text(x+bw/2, y+bh/2+4, glyph, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;text-anchor:middle", css(colorText)))
		} else {
			canvas.Text(x+bw/2, y+bh/3+4, glyph, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;text-anchor:middle", css(colorText)))
			canvas.Text(x+bw/2, y+2*bh/3+4, label, fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:middle", css(colorSubtle)))
		}
		if b.Item.Tooltip != "" {
			canvas.Title(b.Item.Tooltip)
		}
		canvas.Gend()
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
