package toolbar

import "github.com/vanderheijden86/toolbar/pkg/debug"

// Expander is the overflow container of a group. It is created with the
// group's proxy and is never removed.
type Expander struct {
	Group   string
	proxy   *Item
	seq     sequence
	visible bool
}

// Proxy returns the group's proxy button, or nil once it has been removed.
func (e *Expander) Proxy() *Item { return e.proxy }

// Items returns the expander buttons held by the expander, in order.
func (e *Expander) Items() []*Item { return e.seq.items() }

// Visible reports whether the expander is open.
func (e *Expander) Visible() bool { return e.visible }

// expanders maps group names to their expander containers. Expander buttons
// added before their group has a proxy are parked until the proxy appears.
type expanders struct {
	byGroup map[string]*Expander
	order   []string

	parked      map[string]*sequence
	parkedOrder []string
}

func newExpanders() expanders {
	return expanders{
		byGroup: make(map[string]*Expander),
		parked:  make(map[string]*sequence),
	}
}

func (m *expanders) get(group string) *Expander {
	return m.byGroup[group]
}

// create registers a new expander for group, adopting any parked buttons.
func (m *expanders) create(group string, proxy *Item) *Expander {
	e := &Expander{Group: group, proxy: proxy}
	if parked, ok := m.parked[group]; ok {
		for _, env := range parked.envelopes {
			e.seq.insert(e.seq.len(), env)
		}
		delete(m.parked, group)
		m.parkedOrder = removeString(m.parkedOrder, group)
		debug.Log("toolbar: expander %q adopted %d parked item(s)", group, e.seq.len())
	}
	m.byGroup[group] = e
	m.order = append(m.order, group)
	return e
}

// container returns the sequence expander buttons of group are added to.
// The returned sequence may be a fresh parking area that is not registered
// yet; call commitParked once the insertion is known to succeed.
func (m *expanders) container(group string) *sequence {
	if e, ok := m.byGroup[group]; ok {
		return &e.seq
	}
	if s, ok := m.parked[group]; ok {
		return s
	}
	return &sequence{}
}

func (m *expanders) commitParked(group string, s *sequence) {
	if _, ok := m.byGroup[group]; ok {
		return
	}
	if _, ok := m.parked[group]; ok {
		return
	}
	m.parked[group] = s
	m.parkedOrder = append(m.parkedOrder, group)
}

func (m *expanders) show(group string) {
	if e, ok := m.byGroup[group]; ok {
		e.visible = true
	}
}

func (m *expanders) hide(group string) {
	if e, ok := m.byGroup[group]; ok {
		e.visible = false
	}
}

func (m *expanders) toggle(group string) bool {
	e, ok := m.byGroup[group]
	if !ok {
		return false
	}
	e.visible = !e.visible
	return e.visible
}

func (m *expanders) hideAll() {
	for _, e := range m.byGroup {
		e.visible = false
	}
}

func (m *expanders) all() []*Expander {
	out := make([]*Expander, 0, len(m.order))
	for _, g := range m.order {
		out = append(out, m.byGroup[g])
	}
	return out
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
