package model

import (
	"maps"
	"strings"
)

// Kind identifies what an item is and where it lives.
type Kind string

const (
	KindButton         Kind = "button"
	KindSeparator      Kind = "separator"
	KindExpanderProxy  Kind = "expander-proxy"
	KindExpanderButton Kind = "expander-button"
)

// IsValid reports whether k is one of the known item kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindButton, KindSeparator, KindExpanderProxy, KindExpanderButton:
		return true
	}
	return false
}

// IsButton reports whether items of this kind can be clicked.
func (k Kind) IsButton() bool {
	return k == KindButton || k == KindExpanderProxy || k == KindExpanderButton
}

// Overlay keys used by CSSClass and Attributes.
const (
	OverlayItem  = "item"
	OverlayIcon  = "icon"
	OverlayLabel = "label"
)

// Icon is an image reference plus its alternative text.
type Icon struct {
	Src string `yaml:"src,omitempty" json:"src,omitempty"`
	Alt string `yaml:"alt,omitempty" json:"alt,omitempty"`
}

// IsZero reports whether the icon has neither a source nor alt text.
func (i Icon) IsZero() bool {
	return i.Src == "" && i.Alt == ""
}

// ItemProps is the data part of an item's properties. Callbacks are not
// data and live on toolbar.Properties.
type ItemProps struct {
	Icon       Icon                         `yaml:"icon,omitempty" json:"icon,omitempty"`
	Text       string                       `yaml:"text,omitempty" json:"text,omitempty"`
	Tooltip    string                       `yaml:"tooltip,omitempty" json:"tooltip,omitempty"`
	CSSClass   map[string]string            `yaml:"css_class,omitempty" json:"css_class,omitempty"`
	Attributes map[string]map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// ItemDefaults is the template every item's properties are merged over.
// It is never mutated; use MergeProps to derive effective properties.
var ItemDefaults = ItemProps{
	CSSClass:   map[string]string{},
	Attributes: map[string]map[string]string{},
}

// MergeProps returns a fresh deep copy of template with overrides applied on
// top. Neither argument is modified and the result shares no maps with them.
func MergeProps(template, overrides ItemProps) ItemProps {
	out := ItemProps{
		Icon:       template.Icon,
		Text:       template.Text,
		Tooltip:    template.Tooltip,
		CSSClass:   cloneClasses(template.CSSClass),
		Attributes: cloneAttributes(template.Attributes),
	}

	if overrides.Icon.Src != "" {
		out.Icon.Src = overrides.Icon.Src
	}
	if overrides.Icon.Alt != "" {
		out.Icon.Alt = overrides.Icon.Alt
	}
	if overrides.Text != "" {
		out.Text = overrides.Text
	}
	if overrides.Tooltip != "" {
		out.Tooltip = overrides.Tooltip
	}
	maps.Copy(out.CSSClass, overrides.CSSClass)
	for region, attrs := range overrides.Attributes {
		dst, ok := out.Attributes[region]
		if !ok {
			dst = make(map[string]string, len(attrs))
			out.Attributes[region] = dst
		}
		maps.Copy(dst, attrs)
	}
	return out
}

// Clone returns a deep copy of p.
func (p ItemProps) Clone() ItemProps {
	return MergeProps(p, ItemProps{})
}

// Classes returns the extra CSS classes for an overlay region, split on spaces.
func (p ItemProps) Classes(region string) []string {
	return strings.Fields(p.CSSClass[region])
}

func cloneClasses(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	maps.Copy(out, m)
	return out
}

func cloneAttributes(m map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(m))
	for region, attrs := range m {
		out[region] = maps.Clone(attrs)
		if out[region] == nil {
			out[region] = map[string]string{}
		}
	}
	return out
}
