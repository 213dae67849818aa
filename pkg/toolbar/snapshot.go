package toolbar

import "github.com/vanderheijden86/toolbar/pkg/model"

// ItemSnapshot is a serialisable view of one item.
type ItemSnapshot struct {
	ID      string     `json:"id"`
	Kind    model.Kind `json:"kind"`
	Group   string     `json:"group,omitempty"`
	Icon    model.Icon `json:"icon,omitempty"`
	Label   string     `json:"label,omitempty"`
	Tooltip string     `json:"tooltip,omitempty"`
	Active  bool       `json:"active,omitempty"`
}

// ExpanderSnapshot is a serialisable view of a group's expander.
type ExpanderSnapshot struct {
	Group   string         `json:"group"`
	ProxyID string         `json:"proxy_id,omitempty"`
	Visible bool           `json:"visible"`
	Items   []ItemSnapshot `json:"items"`
}

// Snapshot captures the whole toolbar state at one point in time.
type Snapshot struct {
	Labels    bool               `json:"labels"`
	Items     []ItemSnapshot     `json:"items"`
	Expanders []ExpanderSnapshot `json:"expanders,omitempty"`
	Parked    []ItemSnapshot     `json:"parked,omitempty"`
}

// Snapshot returns the current state of the toolbar.
func (tb *Toolbar) Snapshot() Snapshot {
	snap := Snapshot{
		Labels: tb.labels,
		Items:  snapshotItems(tb.top.items()),
	}
	for _, exp := range tb.expanders.all() {
		es := ExpanderSnapshot{
			Group:   exp.Group,
			Visible: exp.visible,
			Items:   snapshotItems(exp.Items()),
		}
		if exp.proxy != nil {
			es.ProxyID = exp.proxy.ID
		}
		snap.Expanders = append(snap.Expanders, es)
	}
	for _, g := range tb.expanders.parkedOrder {
		snap.Parked = append(snap.Parked, snapshotItems(tb.expanders.parked[g].items())...)
	}
	return snap
}

// Snapshot returns a serialisable view of the item.
func (it *Item) Snapshot() ItemSnapshot {
	return ItemSnapshot{
		ID:      it.ID,
		Kind:    it.Kind,
		Group:   it.Group,
		Icon:    it.display.Icon,
		Label:   it.display.Label,
		Tooltip: it.display.Tooltip,
		Active:  it.active,
	}
}

func snapshotItems(items []*Item) []ItemSnapshot {
	out := make([]ItemSnapshot, len(items))
	for i, it := range items {
		out[i] = it.Snapshot()
	}
	return out
}
