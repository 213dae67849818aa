package toolbar

import (
	"errors"
	"testing"

	"github.com/vanderheijden86/toolbar/pkg/model"
)

func expanderToolbar(t *testing.T) *Toolbar {
	t.Helper()
	return mustNew(t, []Entry{
		button("bold", "", ""),
		{Descriptor: model.Descriptor{Type: model.KindExpanderProxy, ID: "shapes", Group: "shape"}},
		{Descriptor: model.Descriptor{Type: model.KindExpanderButton, ID: "circle", Group: "shape",
			Properties: model.ItemProps{Icon: model.Icon{Src: "circle.png", Alt: "Circle"}, Text: "Circle"}}},
		{Descriptor: model.Descriptor{Type: model.KindExpanderButton, ID: "square", Group: "shape",
			Properties: model.ItemProps{Icon: model.Icon{Src: "square.png", Alt: "Square"}, Text: "Square"}}},
		{Descriptor: model.Descriptor{Type: model.KindExpanderProxy, ID: "colours", Group: "colour"}},
		{Descriptor: model.Descriptor{Type: model.KindExpanderButton, ID: "red", Group: "colour"}},
	})
}

func TestDuplicateProxy(t *testing.T) {
	tb := mustNew(t, nil)
	p1, err := tb.AddExpanderProxyItem("p1", "grp", Properties{}, PositionLast, Ref{})
	if err != nil {
		t.Fatal(err)
	}
	exp := tb.Expander("grp")

	_, err = tb.AddExpanderProxyItem("p2", "grp", Properties{}, PositionLast, Ref{})
	if !errors.Is(err, ErrDuplicateProxy) {
		t.Fatalf("expected ErrDuplicateProxy, got %v", err)
	}
	if tb.Expander("grp") != exp || exp.Proxy() != p1 || len(exp.Items()) != 0 {
		t.Fatal("expected first proxy and expander unchanged")
	}
	if tb.Item(ByID("p2")) != nil {
		t.Fatal("expected rejected proxy not to be registered")
	}
}

func TestExpanderContentsAreNotTopLevel(t *testing.T) {
	tb := expanderToolbar(t)

	equalIDs(t, tb.Items(), "bold", "shapes", "colours")
	equalIDs(t, tb.Expander("shape").Items(), "circle", "square")
	equalIDs(t, tb.ItemsInGroup("shape"), "circle", "square")
	if tb.Item(ByID("square")) == nil {
		t.Fatal("expected expander buttons to resolve by id")
	}
	if tb.ProxyForGroup("shape").ID != "shapes" {
		t.Fatal("expected shapes proxy")
	}
	if tb.ProxyForGroup("nothing") != nil {
		t.Fatal("expected no proxy for unknown group")
	}
}

func TestExpanderConstructionMirrorsFirstMember(t *testing.T) {
	tb := expanderToolbar(t)

	if !tb.Item(ByID("circle")).Active() {
		t.Fatal("expected first expander button active")
	}
	d := tb.ProxyForGroup("shape").Display()
	if d.Icon.Src != "circle.png" || d.Icon.Alt != "Circle" || d.Label != "Circle" {
		t.Fatalf("expected proxy to mirror circle, got %+v", d)
	}
}

func TestProxyTogglesOnlyItsExpander(t *testing.T) {
	rec := &recorder{}
	tb := expanderToolbar(t)
	tb.Item(ByID("circle")).Properties.Toggle = rec.toggle("circle", true)

	ok, err := tb.SelectItem(ByID("shapes"))
	if err != nil || !ok {
		t.Fatalf("expected proxy click to succeed, got %v %v", ok, err)
	}
	if !tb.Expander("shape").Visible() {
		t.Fatal("expected shape expander open")
	}
	if tb.Expander("colour").Visible() {
		t.Fatal("expected colour expander closed")
	}
	if !tb.Item(ByID("circle")).Active() || tb.Item(ByID("shapes")).Active() {
		t.Fatal("expected proxy click not to change active state")
	}
	if len(rec.calls) != 0 {
		t.Fatalf("expected no sibling callbacks, got %v", rec.calls)
	}

	if _, err := tb.SelectItem(ByID("shapes")); err != nil {
		t.Fatal(err)
	}
	if tb.Expander("shape").Visible() {
		t.Fatal("expected second proxy click to close the expander")
	}
}

func TestMemberSelectionHidesAllExpanders(t *testing.T) {
	tb := expanderToolbar(t)
	tb.ShowExpander("shape")
	tb.ShowExpander("colour")

	if _, err := tb.SelectItem(ByID("square")); err != nil {
		t.Fatal(err)
	}
	for _, exp := range tb.Expanders() {
		if exp.Visible() {
			t.Errorf("expected expander %q hidden", exp.Group)
		}
	}
	d := tb.ProxyForGroup("shape").Display()
	if d.Icon.Src != "square.png" || d.Label != "Square" {
		t.Errorf("expected proxy to mirror square, got %+v", d)
	}
}

func TestHideAllExpanders(t *testing.T) {
	tb := expanderToolbar(t)
	tb.ShowExpander("shape")
	tb.HideAllExpanders()
	if tb.Expander("shape").Visible() {
		t.Fatal("expected hidden")
	}
	tb.ShowExpander("colour")
	tb.HideExpander("colour")
	if tb.Expander("colour").Visible() {
		t.Fatal("expected hidden")
	}
	tb.ShowExpander("missing")
}

func TestExpanderButtonBeforeProxyIsAdopted(t *testing.T) {
	tb := mustNew(t, nil)
	early, err := tb.AddExpanderButtonItem("early", "late", Properties{}, PositionLast, Ref{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !early.Active() {
		t.Fatal("expected first member to be selected after construction")
	}
	if len(tb.Items()) != 0 {
		t.Fatal("expected parked button to stay out of the top level")
	}
	equalIDs(t, tb.ItemsInGroup("late"), "early")
	if len(tb.Snapshot().Parked) != 1 {
		t.Fatal("expected parked button in snapshot")
	}

	if _, err := tb.AddExpanderProxyItem("proxy", "late", Properties{}, PositionLast, Ref{}); err != nil {
		t.Fatal(err)
	}
	equalIDs(t, tb.Expander("late").Items(), "early")
	if len(tb.Snapshot().Parked) != 0 {
		t.Fatal("expected parking area to be emptied")
	}

	if _, err := tb.AddExpanderButtonItem("next", "late", Properties{}, PositionFirst, Ref{}, false); err != nil {
		t.Fatal(err)
	}
	equalIDs(t, tb.Expander("late").Items(), "next", "early")
}

func TestRemovingProxyKeepsExpander(t *testing.T) {
	tb := expanderToolbar(t)
	if err := tb.RemoveItem(ByID("shapes")); err != nil {
		t.Fatal(err)
	}
	if tb.ProxyForGroup("shape") != nil {
		t.Fatal("expected proxy gone")
	}
	equalIDs(t, tb.ItemsInGroup("shape"), "circle", "square")
	if _, err := tb.SelectItem(ByID("square")); err != nil {
		t.Fatalf("expected selection without proxy to work, got %v", err)
	}
	if _, err := tb.AddExpanderProxyItem("again", "shape", Properties{}, PositionLast, Ref{}); !errors.Is(err, ErrDuplicateProxy) {
		t.Fatalf("expected ErrDuplicateProxy, got %v", err)
	}
}

func TestRemovingExpanderButtonLeavesSiblings(t *testing.T) {
	tb := expanderToolbar(t)
	if err := tb.RemoveItem(ByID("circle")); err != nil {
		t.Fatal(err)
	}
	equalIDs(t, tb.Expander("shape").Items(), "square")
	if tb.Item(ByID("square")).Active() {
		t.Error("expected removal not to select a sibling")
	}
}

func TestSnapshot(t *testing.T) {
	tb := expanderToolbar(t)
	tb.ShowExpander("colour")
	snap := tb.Snapshot()

	if !snap.Labels || len(snap.Items) != 3 || len(snap.Expanders) != 2 {
		t.Fatalf("unexpected snapshot shape: %+v", snap)
	}
	shape := snap.Expanders[0]
	if shape.Group != "shape" || shape.ProxyID != "shapes" || shape.Visible {
		t.Errorf("unexpected shape expander: %+v", shape)
	}
	if len(shape.Items) != 2 || !shape.Items[0].Active || shape.Items[0].Label != "Circle" {
		t.Errorf("unexpected shape items: %+v", shape.Items)
	}
	if !snap.Expanders[1].Visible {
		t.Error("expected colour expander visible")
	}
	if snap.Items[1].Kind != model.KindExpanderProxy || snap.Items[1].Icon.Src != "circle.png" {
		t.Errorf("expected proxy snapshot mirroring circle, got %+v", snap.Items[1])
	}
}

func TestProxyInsideAnotherExpanderKeepsGroupExclusive(t *testing.T) {
	tb := mustNew(t, nil)
	if _, err := tb.AddExpanderProxyItem("p1", "g1", Properties{}, PositionLast, Ref{}); err != nil {
		t.Fatal(err)
	}
	if _, err := tb.AddExpanderButtonItem("e1", "g1", Properties{}, PositionLast, Ref{}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := tb.AddExpanderProxyItem("p2", "g2", Properties{}, PositionAfter, ByID("e1")); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"x", "y"} {
		if _, err := tb.AddExpanderButtonItem(id, "g2", Properties{}, PositionLast, Ref{}, false); err != nil {
			t.Fatal(err)
		}
	}

	if got := len(tb.walk()); got != tb.Len() {
		t.Fatalf("walk visited %d of %d items", got, tb.Len())
	}
	equalIDs(t, tb.ItemsInGroup("g2"), "x", "y")

	for _, id := range []string{"y", "x"} {
		if _, err := tb.SelectItem(ByID(id)); err != nil {
			t.Fatal(err)
		}
	}
	if got := activeIDs(tb.ItemsInGroup("g2")); len(got) != 1 || got[0] != "x" {
		t.Fatalf("expected only x active, got %v", got)
	}
}

func TestProxyAmongOwnParkedButtonsRejected(t *testing.T) {
	tb := mustNew(t, nil)
	if _, err := tb.AddExpanderButtonItem("a", "g", Properties{}, PositionLast, Ref{}, false); err != nil {
		t.Fatal(err)
	}
	_, err := tb.AddExpanderProxyItem("p", "g", Properties{}, PositionAfter, ByID("a"))
	if !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
	if tb.Item(ByID("p")) != nil || tb.Expander("g") != nil {
		t.Fatal("expected nothing to be added")
	}
	equalIDs(t, tb.ItemsInGroup("g"), "a")
}
