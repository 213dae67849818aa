package model

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Descriptor declares one toolbar item in configuration. Items are added in
// the order their descriptors appear.
type Descriptor struct {
	Type       Kind      `yaml:"type,omitempty" json:"type,omitempty"`
	ID         string    `yaml:"id,omitempty" json:"id,omitempty"`
	Group      string    `yaml:"group,omitempty" json:"group,omitempty"`
	Properties ItemProps `yaml:"properties,omitempty" json:"properties,omitempty"`
	Selected   bool      `yaml:"selected,omitempty" json:"selected,omitempty"`

	// Toggleable gives a button an accepting toggle handler, so an ungrouped
	// button flips on click and a grouped one is auto-selected when added.
	Toggleable bool `yaml:"toggle,omitempty" json:"toggle,omitempty"`
}

// EffectiveType returns the descriptor's type, defaulting to a button.
func (d Descriptor) EffectiveType() Kind {
	if d.Type == "" {
		return KindButton
	}
	return d.Type
}

// descriptorFields avoids recursing into the custom unmarshalers.
type descriptorFields Descriptor

// UnmarshalYAML accepts either a mapping or a bare scalar naming the type
// (for example "- separator").
func (d *Descriptor) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*d = Descriptor{Type: Kind(node.Value)}
		return nil
	}
	var f descriptorFields
	if err := node.Decode(&f); err != nil {
		return fmt.Errorf("decoding item descriptor: %w", err)
	}
	*d = Descriptor(f)
	return nil
}

// UnmarshalJSON accepts either an object or a bare string naming the type.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var kind string
		if err := json.Unmarshal(trimmed, &kind); err != nil {
			return fmt.Errorf("decoding item descriptor: %w", err)
		}
		*d = Descriptor{Type: Kind(kind)}
		return nil
	}
	var f descriptorFields
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return fmt.Errorf("decoding item descriptor: %w", err)
	}
	*d = Descriptor(f)
	return nil
}
