package toolbar

import (
	"fmt"

	"github.com/vanderheijden86/toolbar/pkg/debug"
	"github.com/vanderheijden86/toolbar/pkg/metrics"
	"github.com/vanderheijden86/toolbar/pkg/model"
)

// SelectItem performs a click on the referenced item and reports whether
// the selection went through.
//
// Selecting a group's proxy opens or closes its expander. Selecting any
// other group member closes every expander, deactivates the active
// siblings (each sibling's Toggle handler may veto with false, in which
// case nothing changes), activates the item and copies its icon and label
// onto the group's proxy. Selecting an ungrouped item with a Toggle handler
// flips its active flag.
//
// The item's own Toggle and then Action handlers run last, with the state
// the click moves the item to; a false from either makes SelectItem return
// false. They run after activation has been committed, so a veto there does
// not undo it. An already active item can be selected again, re-running its
// handlers.
func (tb *Toolbar) SelectItem(ref Ref) (bool, error) {
	debug.Log("toolbar: selectItem %s", ref)
	it := tb.resolve(ref)
	if it == nil {
		return false, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return tb.selectResolved(it), nil
}

func (tb *Toolbar) selectResolved(it *Item) bool {
	defer metrics.Timer(metrics.Selection)()

	props := it.Properties
	wasActive := it.active
	proceed := true

	if it.Grouped() {
		if it.Kind == model.KindExpanderProxy {
			open := tb.expanders.toggle(it.Group)
			debug.Log("toolbar: expander %q open=%v", it.Group, open)
		} else {
			tb.HideAllExpanders()
			proceed = tb.deactivateSiblings(it)
			if proceed {
				it.active = true
			}
		}
		if proceed {
			tb.mirrorOntoProxy(it)
		}
	} else if props.Toggle != nil {
		it.active = !it.active
	}

	if proceed && props.Toggle != nil {
		proceed = props.Toggle.Toggle(tb, !wasActive)
	}
	if proceed && props.Action != nil {
		proceed = props.Action.Action(tb, !wasActive)
	}
	debug.Log("toolbar: selectItem %q proceed=%v active=%v", it.ID, proceed, it.active)
	return proceed
}

// deactivateSiblings asks every active member of the item's group to let go. All
// of them are released only if none vetoes; the item itself is included when it
// is already active, so reselecting runs its Toggle(false) as well.
func (tb *Toolbar) deactivateSiblings(it *Item) bool {
	var active []*Item
	for _, sib := range tb.ItemsInGroup(it.Group) {
		if sib.active {
			active = append(active, sib)
		}
	}
	for _, sib := range active {
		if t := sib.Properties.Toggle; t != nil && !t.Toggle(tb, false) {
			debug.Log("toolbar: %q vetoed deselection", sib.ID)
			return false
		}
	}
	for _, sib := range active {
		sib.active = false
	}
	return true
}

// mirrorOntoProxy copies the icon and label of it onto its group's proxy.
func (tb *Toolbar) mirrorOntoProxy(it *Item) {
	proxy := tb.ProxyForGroup(it.Group)
	if proxy == nil || proxy == it {
		return
	}
	proxy.display.Icon = it.display.Icon
	proxy.display.Label = it.display.Label
}

// HideAllExpanders closes every group's expander.
func (tb *Toolbar) HideAllExpanders() {
	debug.Log("toolbar: hideAllExpanders")
	tb.expanders.hideAll()
}

// ShowExpander opens the expander of group, if it has one.
func (tb *Toolbar) ShowExpander(group string) {
	tb.expanders.show(group)
}

// HideExpander closes the expander of group, if it has one.
func (tb *Toolbar) HideExpander(group string) {
	tb.expanders.hide(group)
}
