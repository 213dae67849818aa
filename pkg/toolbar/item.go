package toolbar

import "github.com/vanderheijden86/toolbar/pkg/model"

// Toggler is implemented by handlers that want to hear about active-state
// changes. Returning false vetoes the selection in progress.
type Toggler interface {
	Toggle(tb *Toolbar, active bool) bool
}

// Actioner is implemented by handlers that run when an item is selected.
// Its result becomes the result of SelectItem.
type Actioner interface {
	Action(tb *Toolbar, active bool) bool
}

// ToggleFunc adapts a function to Toggler.
type ToggleFunc func(tb *Toolbar, active bool) bool

func (f ToggleFunc) Toggle(tb *Toolbar, active bool) bool { return f(tb, active) }

// ActionFunc adapts a function to Actioner.
type ActionFunc func(tb *Toolbar, active bool) bool

func (f ActionFunc) Action(tb *Toolbar, active bool) bool { return f(tb, active) }

// Properties are an item's data properties plus its optional callbacks.
// A nil Toggle or Action means the item does not have that capability.
type Properties struct {
	model.ItemProps
	Toggle Toggler
	Action Actioner
}

// Display holds what the presentation layer shows for an item: the icon
// region, the label region and the tooltip. Proxy buttons mirror the
// Display of their group's active member.
type Display struct {
	Icon    model.Icon
	Label   string
	Tooltip string
}

// Item is a single toolbar entry. Items are owned by their Toolbar; treat
// the pointer as a handle and use the Toolbar's methods to change state.
type Item struct {
	ID         string
	Kind       model.Kind
	Group      string
	Properties Properties

	display   Display
	active    bool
	container *sequence
}

// Active reports whether the item is currently selected/pressed.
func (it *Item) Active() bool { return it.active }

// Display returns the item's rendered icon, label and tooltip.
func (it *Item) Display() Display { return it.display }

// Grouped reports whether the item belongs to a group.
func (it *Item) Grouped() bool { return it.Group != "" }

// Entry describes an item to add while constructing a Toolbar: the
// configuration descriptor plus callbacks that cannot come from config.
type Entry struct {
	model.Descriptor
	Toggle Toggler
	Action Actioner
}

// Entries wraps plain descriptors, e.g. those loaded from a config file.
// Toggleable descriptors get a Toggle handler that always accepts.
func Entries(descriptors ...model.Descriptor) []Entry {
	entries := make([]Entry, len(descriptors))
	for i, d := range descriptors {
		entries[i] = Entry{Descriptor: d}
		if d.Toggleable {
			entries[i].Toggle = acceptToggle
		}
	}
	return entries
}

var acceptToggle = ToggleFunc(func(*Toolbar, bool) bool { return true })

func (e Entry) properties() Properties {
	return Properties{ItemProps: e.Properties, Toggle: e.Toggle, Action: e.Action}
}
