// Package toolbar implements the toolbar item registry and its selection
// rules: items and separators in an ordered strip, mutually exclusive
// groups, and expander groups whose proxy button mirrors the active member.
//
// Rendering is left to a presentation layer. The toolbar keeps, per item,
// the Display values (icon, label, tooltip) and the active flag a renderer
// needs, and notifies an optional Normalizer after structural changes.
//
// A Toolbar is not safe for concurrent use; drive it from one goroutine.
package toolbar

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vanderheijden86/toolbar/pkg/debug"
	"github.com/vanderheijden86/toolbar/pkg/metrics"
	"github.com/vanderheijden86/toolbar/pkg/model"
)

// Normalizer is the layout collaborator run after every structural change.
// It receives the top-level items in display order.
type Normalizer interface {
	Normalize(items []*Item)
}

// NormalizerFunc adapts a function to Normalizer.
type NormalizerFunc func(items []*Item)

func (f NormalizerFunc) Normalize(items []*Item) { f(items) }

// Option configures a Toolbar.
type Option func(*Toolbar)

// WithLabels controls whether labels are shown at the top level.
func WithLabels(show bool) Option {
	return func(tb *Toolbar) {
		tb.labels = show
	}
}

// WithIconSrcPrefix sets a prefix prepended to every icon source.
func WithIconSrcPrefix(prefix string) Option {
	return func(tb *Toolbar) {
		tb.iconSrcPrefix = prefix
	}
}

// WithDefaultIconAlt sets the alt text used by icons that have none.
func WithDefaultIconAlt(alt string) Option {
	return func(tb *Toolbar) {
		tb.defaultIconAlt = alt
	}
}

// WithNormalizer sets the layout collaborator.
func WithNormalizer(n Normalizer) Option {
	return func(tb *Toolbar) {
		tb.normalizer = n
	}
}

// WithIDGenerator replaces the generator used for omitted ids.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(tb *Toolbar) {
		tb.newID = fn
	}
}

// Toolbar owns every item, their ordering and the group expanders.
type Toolbar struct {
	labels         bool
	iconSrcPrefix  string
	defaultIconAlt string
	normalizer     Normalizer
	newID          func(prefix string) string

	top       sequence
	byID      map[string]*Item
	expanders expanders

	initialised bool
}

// New builds a toolbar from entries, added in order at the end of the
// toolbar. Every group that ends up with no active member then has its
// first member selected. Unknown entry types fail before anything is added.
func New(entries []Entry, opts ...Option) (*Toolbar, error) {
	tb := &Toolbar{
		labels:    true,
		newID:     generateID,
		byID:      make(map[string]*Item),
		expanders: newExpanders(),
	}
	for _, opt := range opts {
		opt(tb)
	}

	for i, e := range entries {
		if !e.EffectiveType().IsValid() {
			return nil, fmt.Errorf("%w: %q (entry %d)", ErrUnknownItemType, string(e.Type), i)
		}
	}

	for _, e := range entries {
		var err error
		switch e.EffectiveType() {
		case model.KindButton:
			_, err = tb.AddButtonItem(e.ID, e.Group, e.properties(), PositionLast, Ref{}, e.Selected)
		case model.KindSeparator:
			_, err = tb.AddSeparatorItem(e.ID, PositionLast, Ref{})
		case model.KindExpanderProxy:
			_, err = tb.AddExpanderProxyItem(e.ID, e.Group, e.properties(), PositionLast, Ref{})
		case model.KindExpanderButton:
			_, err = tb.AddExpanderButtonItem(e.ID, e.Group, e.properties(), PositionLast, Ref{}, e.Selected)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, e := range entries {
		if e.Group == "" {
			continue
		}
		members := tb.ItemsInGroup(e.Group)
		if len(members) == 0 || hasActive(members) {
			continue
		}
		if _, err := tb.SelectItem(Handle(members[0])); err != nil {
			return nil, err
		}
	}

	tb.initialised = true
	tb.fixHeight()
	return tb, nil
}

// Labels reports whether labels are shown at the top level.
func (tb *Toolbar) Labels() bool { return tb.labels }

// SetLabels switches label visibility and re-runs height normalisation.
func (tb *Toolbar) SetLabels(show bool) {
	debug.Log("toolbar: setLabels %v", show)
	tb.labels = show
	tb.fixHeight()
}

// AddButtonItem adds a top-level button. An empty id is generated. The new
// button is selected when selected is true, or when it is the first member
// of its group added after construction and it has a Toggle handler.
func (tb *Toolbar) AddButtonItem(id, group string, props Properties, pos Position, relativeTo Ref, selected bool) (*Item, error) {
	debug.Log("toolbar: addButtonItem id=%q group=%q pos=%q rel=%s selected=%v", id, group, pos, relativeTo, selected)
	defer metrics.Timer(metrics.ItemMutation)()

	isFirst := group != "" && len(tb.ItemsInGroup(group)) == 0
	it, err := tb.insertItem(id, "item", model.KindButton, group, props, &tb.top, pos, relativeTo)
	if err != nil {
		return nil, err
	}
	if selected || (isFirst && tb.initialised && props.Toggle != nil) {
		tb.selectResolved(it)
	}
	tb.fixHeight()
	return it, nil
}

// AddSeparatorItem adds an inert separator.
func (tb *Toolbar) AddSeparatorItem(id string, pos Position, relativeTo Ref) (*Item, error) {
	debug.Log("toolbar: addSeparatorItem id=%q pos=%q rel=%s", id, pos, relativeTo)
	defer metrics.Timer(metrics.ItemMutation)()

	it, err := tb.insertItem(id, "separator", model.KindSeparator, "", Properties{}, &tb.top, pos, relativeTo)
	if err != nil {
		return nil, err
	}
	tb.fixHeight()
	return it, nil
}

// AddExpanderProxyItem adds the proxy button for group together with the
// group's (empty) expander. A group can have only one proxy.
func (tb *Toolbar) AddExpanderProxyItem(id, group string, props Properties, pos Position, relativeTo Ref) (*Item, error) {
	debug.Log("toolbar: addExpanderProxyItem id=%q group=%q pos=%q rel=%s", id, group, pos, relativeTo)
	defer metrics.Timer(metrics.ItemMutation)()

	if tb.expanders.get(group) != nil {
		return nil, fmt.Errorf("%w: group %q", ErrDuplicateProxy, group)
	}
	// The proxy would be adopted into its own expander.
	if pos == PositionBefore || pos == PositionAfter {
		if ref := tb.resolve(relativeTo); ref != nil && ref.container != nil && ref.container == tb.expanders.parked[group] {
			return nil, fmt.Errorf("%w: proxy for %q cannot sit among its own group's buttons", ErrUnknownReference, group)
		}
	}
	it, err := tb.insertItem(id, "item", model.KindExpanderProxy, group, props, &tb.top, pos, relativeTo)
	if err != nil {
		return nil, err
	}
	exp := tb.expanders.create(group, it)
	if env := it.container.envelopeOf(it); env != nil {
		env.expander = exp
	}
	tb.fixHeight()
	return it, nil
}

// AddExpanderButtonItem adds a button to the expander of group. Buttons
// added before the group has a proxy are kept aside and move into the
// expander when the proxy is added. The first member of a group added after
// construction is selected.
func (tb *Toolbar) AddExpanderButtonItem(id, group string, props Properties, pos Position, relativeTo Ref, selected bool) (*Item, error) {
	debug.Log("toolbar: addExpanderButtonItem id=%q group=%q pos=%q rel=%s selected=%v", id, group, pos, relativeTo, selected)
	defer metrics.Timer(metrics.ItemMutation)()

	isFirst := len(tb.ItemsInGroup(group)) == 0
	target := tb.expanders.container(group)
	it, err := tb.insertItem(id, "item", model.KindExpanderButton, group, props, target, pos, relativeTo)
	if err != nil {
		return nil, err
	}
	if it.container == target {
		tb.expanders.commitParked(group, target)
	}
	if selected || (isFirst && tb.initialised) {
		tb.selectResolved(it)
	}
	tb.fixHeight()
	return it, nil
}

// RemoveItem removes the referenced item from whichever container holds it.
// Group siblings and the group's expander are left alone.
func (tb *Toolbar) RemoveItem(ref Ref) error {
	debug.Log("toolbar: removeItem %s", ref)
	defer metrics.Timer(metrics.ItemMutation)()

	it := tb.resolve(ref)
	if it == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	tb.detach(it)
	tb.fixHeight()
	return nil
}

// Destroy removes every item. The expander mapping is kept, as with
// RemoveItem.
func (tb *Toolbar) Destroy() {
	debug.Log("toolbar: destroy")
	for _, it := range tb.walk() {
		tb.detach(it)
	}
	tb.fixHeight()
}

func (tb *Toolbar) detach(it *Item) {
	if it.container != nil {
		it.container.remove(it)
	}
	delete(tb.byID, it.ID)
	if it.Kind == model.KindExpanderProxy {
		if exp := tb.expanders.get(it.Group); exp != nil && exp.proxy == it {
			exp.proxy = nil
		}
	}
}

// Item resolves ref, returning nil when nothing matches.
func (tb *Toolbar) Item(ref Ref) *Item {
	debug.Log("toolbar: getItem %s", ref)
	return tb.resolve(ref)
}

// Items returns the top-level items and separators in display order.
// Expander contents are not included.
func (tb *Toolbar) Items() []*Item {
	return tb.top.items()
}

// ItemsInGroup returns every member of group in display order, including
// expander buttons and excluding the group's proxy.
func (tb *Toolbar) ItemsInGroup(group string) []*Item {
	var out []*Item
	for _, it := range tb.walk() {
		if it.Group == group && it.Kind != model.KindExpanderProxy {
			out = append(out, it)
		}
	}
	return out
}

// ProxyForGroup returns the group's proxy button, or nil.
func (tb *Toolbar) ProxyForGroup(group string) *Item {
	if exp := tb.expanders.get(group); exp != nil {
		return exp.proxy
	}
	return nil
}

// Expander returns the expander of group, or nil.
func (tb *Toolbar) Expander(group string) *Expander {
	return tb.expanders.get(group)
}

// Expanders returns every expander in creation order.
func (tb *Toolbar) Expanders() []*Expander {
	return tb.expanders.all()
}

// Len returns the number of registered items, wherever they are held.
func (tb *Toolbar) Len() int {
	return len(tb.byID)
}

// walk lists every registered item in display order: the top level with
// each proxy followed by its expander, then expanders whose proxy was
// removed, then parked expander buttons. Expanders are entered wherever
// their proxy sits, including inside another group's expander.
func (tb *Toolbar) walk() []*Item {
	out := make([]*Item, 0, len(tb.byID))
	out = appendSeq(out, &tb.top)
	for _, exp := range tb.expanders.all() {
		if exp.proxy == nil || exp.proxy.container == nil {
			out = appendSeq(out, &exp.seq)
		}
	}
	for _, g := range tb.expanders.parkedOrder {
		out = appendSeq(out, tb.expanders.parked[g])
	}
	return out
}

func appendSeq(out []*Item, s *sequence) []*Item {
	for _, env := range s.envelopes {
		out = append(out, env.item)
		if env.expander != nil {
			out = appendSeq(out, &env.expander.seq)
		}
	}
	return out
}

func (tb *Toolbar) resolve(ref Ref) *Item {
	switch ref.kind {
	case refIndex:
		i := ref.index
		if i < 0 {
			i += tb.top.len()
		}
		if i < 0 || i >= tb.top.len() {
			return nil
		}
		return tb.top.envelopes[i].item
	case refHandle:
		if ref.item == nil || tb.byID[ref.item.ID] != ref.item {
			return nil
		}
		return ref.item
	}

	switch ref.id {
	case RefFirst:
		return tb.top.first()
	case RefLast, "":
		return tb.top.last()
	default:
		return tb.byID[ref.id]
	}
}

func (tb *Toolbar) insertItem(id, prefix string, kind model.Kind, group string, props Properties, target *sequence, pos Position, relativeTo Ref) (*Item, error) {
	if id != "" {
		if _, exists := tb.byID[id]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
	}
	at, err := tb.place(target, pos, relativeTo)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = tb.uniqueID(prefix)
	}

	props.ItemProps = model.MergeProps(model.ItemDefaults, props.ItemProps)
	it := &Item{
		ID:         id,
		Kind:       kind,
		Group:      group,
		Properties: props,
	}
	if kind != model.KindSeparator {
		it.display = tb.buildDisplay(props.ItemProps)
	}
	at.put(&envelope{item: it})
	tb.byID[id] = it
	return it, nil
}

func (tb *Toolbar) buildDisplay(p model.ItemProps) Display {
	d := Display{Label: p.Text, Tooltip: p.Tooltip}
	if p.Icon.Src != "" {
		d.Icon.Src = tb.iconSrcPrefix + p.Icon.Src
	}
	d.Icon.Alt = p.Icon.Alt
	if d.Icon.Alt == "" {
		d.Icon.Alt = tb.defaultIconAlt
	}
	return d
}

func (tb *Toolbar) uniqueID(prefix string) string {
	for {
		id := tb.newID(prefix)
		if _, exists := tb.byID[id]; !exists {
			return id
		}
	}
}

func generateID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func (tb *Toolbar) fixHeight() {
	if !tb.initialised || tb.normalizer == nil {
		return
	}
	tb.normalizer.Normalize(tb.top.items())
}

func hasActive(items []*Item) bool {
	for _, it := range items {
		if it.active {
			return true
		}
	}
	return false
}
