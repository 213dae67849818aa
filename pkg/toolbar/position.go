package toolbar

import (
	"fmt"
	"slices"
)

// Position says where a new item goes relative to its container or to
// another item.
type Position string

const (
	PositionFirst  Position = "_first"
	PositionLast   Position = "_last"
	PositionBefore Position = "_before"
	PositionAfter  Position = "_after"
)

// envelope wraps an item inside a sequence. A proxy's envelope also hosts
// the group's expander, so the expander travels with the proxy.
type envelope struct {
	item     *Item
	expander *Expander
}

// sequence is an ordered container of items: the top level, an expander,
// or the parking area for expander buttons whose proxy does not exist yet.
type sequence struct {
	envelopes []*envelope
}

func (s *sequence) len() int { return len(s.envelopes) }

func (s *sequence) indexOf(it *Item) int {
	return slices.IndexFunc(s.envelopes, func(e *envelope) bool { return e.item == it })
}

func (s *sequence) envelopeOf(it *Item) *envelope {
	if i := s.indexOf(it); i >= 0 {
		return s.envelopes[i]
	}
	return nil
}

func (s *sequence) insert(i int, e *envelope) {
	s.envelopes = slices.Insert(s.envelopes, i, e)
	e.item.container = s
}

func (s *sequence) remove(it *Item) *envelope {
	i := s.indexOf(it)
	if i < 0 {
		return nil
	}
	e := s.envelopes[i]
	s.envelopes = slices.Delete(s.envelopes, i, i+1)
	it.container = nil
	return e
}

func (s *sequence) items() []*Item {
	out := make([]*Item, len(s.envelopes))
	for i, e := range s.envelopes {
		out[i] = e.item
	}
	return out
}

func (s *sequence) first() *Item {
	if len(s.envelopes) == 0 {
		return nil
	}
	return s.envelopes[0].item
}

func (s *sequence) last() *Item {
	if len(s.envelopes) == 0 {
		return nil
	}
	return s.envelopes[len(s.envelopes)-1].item
}

// slot is a resolved insertion point.
type slot struct {
	into  *sequence
	index int
}

// place resolves (pos, relativeTo) into an insertion point. target is the
// container used for the first/last positions; before/after insert next to
// the referenced item inside whichever container holds it. Nothing is
// mutated, so callers can check every precondition before committing.
func (tb *Toolbar) place(target *sequence, pos Position, relativeTo Ref) (slot, error) {
	switch pos {
	case PositionFirst:
		return slot{into: target, index: 0}, nil
	case PositionLast, "":
		return slot{into: target, index: target.len()}, nil
	case PositionBefore, PositionAfter:
		ref := tb.resolve(relativeTo)
		if ref == nil || ref.container == nil {
			return slot{}, fmt.Errorf("%w: cannot position relative to %s", ErrUnknownReference, relativeTo)
		}
		i := ref.container.indexOf(ref)
		if pos == PositionAfter {
			i++
		}
		return slot{into: ref.container, index: i}, nil
	default:
		return slot{}, fmt.Errorf("%w: %q", ErrUnknownPosition, string(pos))
	}
}

func (s slot) put(e *envelope) {
	s.into.insert(s.index, e)
}
