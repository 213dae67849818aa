// Package hooks runs shell commands when toolbar items are clicked.
// Hooks are declared under "hooks:" in the toolbar config and matched by
// item id or group.
package hooks

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// DefaultTimeout is the default hook execution timeout
const DefaultTimeout = 30 * time.Second

// OnError values.
const (
	OnErrorFail     = "fail"     // stop running further hooks for this click
	OnErrorContinue = "continue" // record the failure and keep going
)

// Hook defines a single hook configuration. A hook with neither Item nor
// Group runs for every clicked button.
type Hook struct {
	Name    string            `yaml:"name,omitempty" json:"name,omitempty"`
	Item    string            `yaml:"item,omitempty" json:"item,omitempty"`   // Runs when this item is clicked
	Group   string            `yaml:"group,omitempty" json:"group,omitempty"` // Runs for any button of this group
	Command string            `yaml:"command" json:"command"`                 // Shell command to run
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"` // Additional environment variables
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"`
}

// Matches reports whether h should run for a click on the item id of the
// given kind and group. Proxies only match by id: clicking one opens its
// expander rather than acting for the group.
func (h Hook) Matches(id, group string, proxy bool) bool {
	switch {
	case h.Item != "":
		return h.Item == id
	case h.Group != "":
		return !proxy && h.Group == group
	default:
		return !proxy
	}
}

// ClickContext describes the click passed to hooks via environment variables
type ClickContext struct {
	Toolbar   string    // TB_TOOLBAR
	ItemID    string    // TB_ITEM_ID
	Group     string    // TB_ITEM_GROUP
	Active    bool      // TB_ITEM_ACTIVE: "1" or "0" after the click
	Timestamp time.Time // TB_TIMESTAMP (RFC3339)
}

// ToEnv converts the click context to environment variables
func (c ClickContext) ToEnv() []string {
	active := "0"
	if c.Active {
		active = "1"
	}
	return []string{
		"TB_TOOLBAR=" + c.Toolbar,
		"TB_ITEM_ID=" + c.ItemID,
		"TB_ITEM_GROUP=" + c.Group,
		"TB_ITEM_ACTIVE=" + active,
		"TB_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// Normalize applies defaults, drops hooks with empty commands, and returns
// a warning for each dropped hook.
func Normalize(hooks []Hook) ([]Hook, []string) {
	var out []Hook
	var warnings []string
	for i := range hooks {
		hook := hooks[i]
		if strings.TrimSpace(hook.Command) == "" {
			warnings = append(warnings, fmt.Sprintf("hook %d has empty command; skipping", i+1))
			continue
		}
		if hook.Timeout <= 0 {
			hook.Timeout = DefaultTimeout
		}
		switch hook.OnError {
		case "":
			hook.OnError = OnErrorContinue
		case OnErrorFail, OnErrorContinue:
		default:
			warnings = append(warnings, fmt.Sprintf("hook %d: unknown on_error %q, using %q", i+1, hook.OnError, OnErrorContinue))
			hook.OnError = OnErrorContinue
		}
		if hook.Name == "" {
			switch {
			case hook.Item != "":
				hook.Name = hook.Item
			case hook.Group != "":
				hook.Name = hook.Group
			default:
				hook.Name = fmt.Sprintf("hook-%d", i+1)
			}
		}
		out = append(out, hook)
	}
	return out, warnings
}

// hookDTO mirrors Hook with Timeout as text.
type hookDTO struct {
	Name    string            `yaml:"name" json:"name"`
	Item    string            `yaml:"item" json:"item"`
	Group   string            `yaml:"group" json:"group"`
	Command string            `yaml:"command" json:"command"`
	Timeout any               `yaml:"timeout" json:"timeout"`
	Env     map[string]string `yaml:"env" json:"env"`
	OnError string            `yaml:"on_error" json:"on_error"`
}

func (d hookDTO) hook() (Hook, error) {
	h := Hook{
		Name:    d.Name,
		Item:    d.Item,
		Group:   d.Group,
		Command: d.Command,
		Env:     d.Env,
		OnError: d.OnError,
	}
	timeout, err := parseTimeout(d.Timeout)
	if err != nil {
		return Hook{}, err
	}
	h.Timeout = timeout
	return h, nil
}

// parseTimeout accepts a duration string ("5s") or a bare number of
// seconds.
func parseTimeout(v any) (time.Duration, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int:
		return time.Duration(t) * time.Second, nil
	case float64:
		return time.Duration(t * float64(time.Second)), nil
	case string:
		if t == "" {
			return 0, nil
		}
		if d, err := time.ParseDuration(t); err == nil {
			return d, nil
		}
		seconds, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timeout %q", t)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("invalid timeout %v", v)
	}
}

// UnmarshalYAML implements custom YAML unmarshalling for Timeout
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	var dto hookDTO
	if err := node.Decode(&dto); err != nil {
		return err
	}
	hook, err := dto.hook()
	if err != nil {
		return err
	}
	*h = hook
	return nil
}

// UnmarshalJSON implements custom JSON unmarshalling for Timeout
func (h *Hook) UnmarshalJSON(data []byte) error {
	var dto hookDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	hook, err := dto.hook()
	if err != nil {
		return err
	}
	*h = hook
	return nil
}

// hookOut is the written form of a Hook, with Timeout as a duration string.
type hookOut struct {
	Name    string            `yaml:"name,omitempty" json:"name,omitempty"`
	Item    string            `yaml:"item,omitempty" json:"item,omitempty"`
	Group   string            `yaml:"group,omitempty" json:"group,omitempty"`
	Command string            `yaml:"command" json:"command"`
	Timeout string            `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"`
}

func (h Hook) out() hookOut {
	o := hookOut{
		Name:    h.Name,
		Item:    h.Item,
		Group:   h.Group,
		Command: h.Command,
		Env:     h.Env,
		OnError: h.OnError,
	}
	if h.Timeout > 0 {
		o.Timeout = h.Timeout.String()
	}
	return o
}

// MarshalYAML writes Timeout as a duration string.
func (h Hook) MarshalYAML() (any, error) {
	return h.out(), nil
}

// MarshalJSON writes Timeout as a duration string.
func (h Hook) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.out())
}
