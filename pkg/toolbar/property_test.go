package toolbar

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/toolbar/pkg/model"
)

// genEntries draws a toolbar layout of buttons, separators and expander
// groups. Group names come from a small pool so groups get several members.
func genEntries(t *rapid.T) []Entry {
	groups := []string{"", "g1", "g2", "g3"}
	n := rapid.IntRange(0, 16).Draw(t, "n")
	proxies := map[string]bool{}
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		group := rapid.SampledFrom(groups).Draw(t, fmt.Sprintf("group%d", i))
		kind := rapid.SampledFrom([]model.Kind{
			model.KindButton, model.KindButton, model.KindSeparator,
			model.KindExpanderProxy, model.KindExpanderButton,
		}).Draw(t, fmt.Sprintf("kind%d", i))
		switch kind {
		case model.KindSeparator:
			group = ""
		case model.KindExpanderProxy, model.KindExpanderButton:
			if group == "" {
				group = "x"
			}
			if kind == model.KindExpanderProxy {
				if proxies[group] {
					kind = model.KindExpanderButton
				}
				proxies[group] = true
			}
		}
		entries = append(entries, Entry{Descriptor: model.Descriptor{
			Type:       kind,
			Group:      group,
			Properties: model.ItemProps{Icon: model.Icon{Src: fmt.Sprintf("%d.png", i)}, Text: fmt.Sprintf("item %d", i)},
		}})
	}
	return entries
}

func TestPropertyExclusiveSelection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tb, err := New(genEntries(t))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		groups := map[string]bool{}
		for _, it := range tb.walk() {
			if it.Grouped() {
				groups[it.Group] = true
			}
		}
		for g := range groups {
			if active := activeIDs(tb.ItemsInGroup(g)); len(active) > 1 {
				t.Fatalf("group %q has %d active members after construction: %v", g, len(active), active)
			}
		}

		all := tb.walk()
		if len(all) == 0 {
			return
		}
		clicks := rapid.IntRange(1, 20).Draw(t, "clicks")
		for i := 0; i < clicks; i++ {
			target := rapid.SampledFrom(all).Draw(t, fmt.Sprintf("click%d", i))
			ok, err := tb.SelectItem(Handle(target))
			if err != nil {
				t.Fatalf("select %q: %v", target.ID, err)
			}
			if !target.Grouped() {
				continue
			}
			active := activeIDs(tb.ItemsInGroup(target.Group))
			if len(active) > 1 {
				t.Fatalf("group %q has several active members: %v", target.Group, active)
			}
			if target.Kind == model.KindExpanderProxy {
				continue
			}
			if ok && (len(active) != 1 || active[0] != target.ID) {
				t.Fatalf("expected %q to be the only active member of %q, got %v", target.ID, target.Group, active)
			}
			if proxy := tb.ProxyForGroup(target.Group); proxy != nil && proxy.Display().Icon != target.Display().Icon {
				t.Fatalf("expected proxy of %q to mirror %q", target.Group, target.ID)
			}
		}
	})
}

func TestPropertyGeneratedIDsUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tb, err := New(genEntries(t))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		adds := rapid.IntRange(1, 10).Draw(t, "adds")
		for i := 0; i < adds; i++ {
			if _, err := tb.AddButtonItem("", "", Properties{}, PositionLast, Ref{}, false); err != nil {
				t.Fatal(err)
			}
			added := tb.Item(Last)
			for _, other := range tb.walk() {
				if other != added && other.ID == added.ID {
					t.Fatalf("generated id %q collides", added.ID)
				}
			}
		}
		seen := map[string]bool{}
		for _, it := range tb.walk() {
			if seen[it.ID] {
				t.Fatalf("duplicate id %q", it.ID)
			}
			seen[it.ID] = true
		}
		if len(seen) != tb.Len() {
			t.Fatalf("walk saw %d items, registry holds %d", len(seen), tb.Len())
		}
	})
}

func TestPropertyFirstLastMatchItems(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tb, err := New(genEntries(t))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		all := tb.Items()
		if len(all) == 0 {
			if tb.Item(First) != nil || tb.Item(Last) != nil {
				t.Fatal("expected nil first/last on empty top level")
			}
			return
		}
		if tb.Item(First) != all[0] || tb.Item(Last) != all[len(all)-1] {
			t.Fatal("expected _first/_last to match Items ends")
		}
	})
}
