package toolbar

import (
	"errors"
	"testing"
)

func TestPositions(t *testing.T) {
	tests := []struct {
		name     string
		pos      Position
		relative Ref
		want     []string
	}{
		{"first", PositionFirst, Ref{}, []string{"new", "a", "b", "c"}},
		{"last", PositionLast, Ref{}, []string{"a", "b", "c", "new"}},
		{"omitted", "", Ref{}, []string{"a", "b", "c", "new"}},
		{"before", PositionBefore, ByID("b"), []string{"a", "new", "b", "c"}},
		{"after", PositionAfter, ByID("b"), []string{"a", "b", "new", "c"}},
		{"after last", PositionAfter, Last, []string{"a", "b", "c", "new"}},
		{"before index", PositionBefore, At(0), []string{"new", "a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := mustNew(t, []Entry{button("a", "", ""), button("b", "", ""), button("c", "", "")})
			if _, err := tb.AddButtonItem("new", "", Properties{}, tt.pos, tt.relative, false); err != nil {
				t.Fatalf("add failed: %v", err)
			}
			equalIDs(t, tb.Items(), tt.want...)
		})
	}
}

func TestPositionErrorsLeaveToolbarUnchanged(t *testing.T) {
	tb := mustNew(t, []Entry{button("a", "", "")})

	_, err := tb.AddButtonItem("x", "", Properties{}, PositionBefore, ByID("missing"), false)
	if !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
	_, err = tb.AddSeparatorItem("y", "_middle", Ref{})
	if !errors.Is(err, ErrUnknownPosition) {
		t.Fatalf("expected ErrUnknownPosition, got %v", err)
	}
	_, err = tb.AddExpanderProxyItem("z", "g", Properties{}, PositionAfter, ByID("missing"))
	if !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}

	equalIDs(t, tb.Items(), "a")
	if tb.Len() != 1 {
		t.Fatalf("expected one registered item, got %d", tb.Len())
	}
	if tb.Expander("g") != nil {
		t.Fatal("expected no expander for a failed proxy add")
	}
	if _, err := tb.AddExpanderProxyItem("z", "g", Properties{}, PositionLast, Ref{}); err != nil {
		t.Fatalf("expected proxy add to succeed after failed attempt, got %v", err)
	}
}

func TestRelativeToEmptyToolbar(t *testing.T) {
	tb := mustNew(t, nil)
	if _, err := tb.AddButtonItem("a", "", Properties{}, PositionBefore, Ref{}, false); !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
}

func TestRelativePositionUsesReferenceContainer(t *testing.T) {
	tb := mustNew(t, nil)
	if _, err := tb.AddExpanderProxyItem("p", "g", Properties{}, PositionLast, Ref{}); err != nil {
		t.Fatal(err)
	}
	if _, err := tb.AddExpanderButtonItem("x", "g", Properties{}, PositionLast, Ref{}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := tb.AddExpanderButtonItem("w", "g", Properties{}, PositionBefore, ByID("x"), false); err != nil {
		t.Fatal(err)
	}
	// A top-level button placed next to an expander button lands in the expander.
	if _, err := tb.AddButtonItem("b", "", Properties{}, PositionAfter, ByID("x"), false); err != nil {
		t.Fatal(err)
	}

	equalIDs(t, tb.Expander("g").Items(), "w", "x", "b")
	equalIDs(t, tb.Items(), "p")
}
