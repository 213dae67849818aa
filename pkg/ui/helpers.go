package ui

import (
	"path"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/toolbar/pkg/model"
)

// truncateRunesHelper truncates a string to max visual width (cells), adding suffix if needed.
// Uses go-runewidth to handle wide characters correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	return runewidth.Truncate(s, maxWidth-suffixWidth, "") + suffix
}

// iconGlyph picks the text drawn for an icon in a terminal: the alt text,
// or else the image's base name without extension.
func iconGlyph(icon model.Icon) string {
	if icon.Alt != "" {
		return icon.Alt
	}
	if icon.Src == "" {
		return ""
	}
	base := path.Base(icon.Src)
	return strings.TrimSuffix(base, path.Ext(base))
}
