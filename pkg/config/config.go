// Package config handles loading and saving tb configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/tb/config.yaml (config.json is read as JSON)
//   - State:   ~/.local/state/tb/ (remembered selections)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/toolbar/pkg/debug"
	"github.com/vanderheijden86/toolbar/pkg/hooks"
	"github.com/vanderheijden86/toolbar/pkg/metrics"
	"github.com/vanderheijden86/toolbar/pkg/model"
	"github.com/vanderheijden86/toolbar/pkg/toolbar"
)

// ToolbarConfig declares the toolbar and its items.
type ToolbarConfig struct {
	Name           string             `yaml:"name,omitempty" json:"name,omitempty"`                         // Key for remembered state
	Labels         *bool              `yaml:"labels,omitempty" json:"labels,omitempty"`                     // Show labels at the top level (default true)
	IconSrcPrefix  string             `yaml:"icon_src_prefix,omitempty" json:"icon_src_prefix,omitempty"`   // Prepended to every icon src
	DefaultIconAlt string             `yaml:"default_icon_alt,omitempty" json:"default_icon_alt,omitempty"` // Alt text for icons without one
	Items          []model.Descriptor `yaml:"items,omitempty" json:"items,omitempty"`
}

// StateConfig controls the remembered selection state.
type StateConfig struct {
	Disabled bool   `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty"` // Defaults to StateDir()/state.db
}

// UIConfig holds presentation settings.
type UIConfig struct {
	BlurDelayMs   int `yaml:"blur_delay_ms,omitempty" json:"blur_delay_ms,omitempty"`     // Delay before a clicked item loses its pressed look
	MaxLabelWidth int `yaml:"max_label_width,omitempty" json:"max_label_width,omitempty"` // Labels are truncated to this many cells
}

// Config is the top-level configuration for tb.
type Config struct {
	Toolbar ToolbarConfig `yaml:"toolbar" json:"toolbar"`
	State   StateConfig   `yaml:"state,omitempty" json:"state,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty" json:"ui,omitempty"`
	Hooks   []hooks.Hook  `yaml:"hooks,omitempty" json:"hooks,omitempty"`

	warnings []string
}

// Warnings returns problems found while loading that did not stop it,
// such as hooks dropped for having no command.
func (c Config) Warnings() []string {
	return c.warnings
}

// HookExecutor returns an executor for the configured hooks, or nil when
// there are none.
func (c Config) HookExecutor() *hooks.Executor {
	if len(c.Hooks) == 0 {
		return nil
	}
	return hooks.NewExecutor(c.Hooks)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Toolbar: ToolbarConfig{
			Name: "main",
		},
		UI: UIConfig{
			MaxLabelWidth: 16,
		},
	}
}

// ConfigDir returns the XDG config directory for tb.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tb")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tb")
}

// StateDir returns the XDG state directory for tb.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "tb")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "tb")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path. Files ending in .json are
// parsed as JSON, everything else as YAML.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	defer metrics.Timer(metrics.ConfigLoad)()
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if isJSON(path) {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Toolbar.Name == "" {
		cfg.Toolbar.Name = "main"
	}
	cfg.State.Path = expandHome(cfg.State.Path)
	cfg.Hooks, cfg.warnings = hooks.Normalize(cfg.Hooks)
	for _, w := range cfg.warnings {
		debug.Log("config: %s: %s", path, w)
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path, as JSON when the path ends
// in .json and as YAML otherwise.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ShowLabels reports whether labels are enabled, defaulting to true.
func (c ToolbarConfig) ShowLabels() bool {
	return c.Labels == nil || *c.Labels
}

// Options returns the toolbar options described by the config.
func (c ToolbarConfig) Options() []toolbar.Option {
	return []toolbar.Option{
		toolbar.WithLabels(c.ShowLabels()),
		toolbar.WithIconSrcPrefix(c.IconSrcPrefix),
		toolbar.WithDefaultIconAlt(c.DefaultIconAlt),
	}
}

// Build constructs a toolbar from the configured items. Extra options are
// applied after the configured ones.
func (c ToolbarConfig) Build(extra ...toolbar.Option) (*toolbar.Toolbar, error) {
	return toolbar.New(toolbar.Entries(c.Items...), append(c.Options(), extra...)...)
}

// AddItem appends a descriptor, rejecting ids that are already taken.
func (c *ToolbarConfig) AddItem(d model.Descriptor) error {
	if d.ID != "" {
		for _, existing := range c.Items {
			if existing.ID == d.ID {
				return fmt.Errorf("%w: %q", toolbar.ErrDuplicateID, d.ID)
			}
		}
	}
	c.Items = append(c.Items, d)
	return nil
}

// Groups returns the distinct group names used by the configured items, in
// first-use order.
func (c ToolbarConfig) Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, d := range c.Items {
		if d.Group == "" || seen[d.Group] {
			continue
		}
		seen[d.Group] = true
		groups = append(groups, d.Group)
	}
	return groups
}

// StatePath returns where selection state is stored.
func (c Config) StatePath() string {
	if c.State.Path != "" {
		return c.State.Path
	}
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "state.db")
}

// BlurDelay returns how long a clicked item keeps its pressed look.
func (c UIConfig) BlurDelay() time.Duration {
	if c.BlurDelayMs <= 0 {
		return 0
	}
	return time.Duration(c.BlurDelayMs) * time.Millisecond
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
